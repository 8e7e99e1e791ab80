package search

import "quotacard/internal/domain"

// State holds search state for one candidate pane.
type State struct {
	Query    string
	Original []domain.Candidate // full list cached at load time
	Results  []domain.Candidate // current search results
	Active   bool               // a search result list is on display
}
