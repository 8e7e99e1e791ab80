package search

import (
	"strings"

	"quotacard/internal/domain"
)

// MatcherFunc resolves a query against the originally loaded list. Services
// without a matcher need a remote search instead.
type MatcherFunc func(query string, original []domain.Candidate) []domain.Candidate

// Service handles search for one candidate pane. The list shown on screen is
// always either the original list cached at load time or the latest result
// set; results replace the display, they never merge into it, so an empty
// query can always restore the untouched original.
type Service struct {
	state     *State
	matcherFn MatcherFunc
}

// NewService creates a new search service
func NewService() *Service {
	return &Service{
		state: &State{},
	}
}

// SetMatcherFunction sets a local matcher; panes with one never go remote.
func (s *Service) SetMatcherFunction(fn MatcherFunc) {
	s.matcherFn = fn
}

// SetOriginal caches the full candidate list and resets the display to it.
func (s *Service) SetOriginal(items []domain.Candidate) {
	s.state.Original = make([]domain.Candidate, len(items))
	copy(s.state.Original, items)
	s.clearSearch()
}

// StartSearch begins a new search. An empty query restores the original
// list. Returns true when the query needs a remote search; the caller is
// expected to feed the answer back through SetResults.
func (s *Service) StartSearch(query string) bool {
	s.state.Query = query

	if query == "" {
		s.clearSearch()
		return false
	}

	if s.matcherFn != nil {
		s.state.Results = s.matcherFn(query, s.original())
		s.state.Active = true
		return false
	}

	return true
}

// SetResults replaces the displayed list with remote search results.
func (s *Service) SetResults(items []domain.Candidate) {
	s.state.Results = make([]domain.Candidate, len(items))
	copy(s.state.Results, items)
	s.state.Active = true
}

// Displayed returns the list currently on display.
func (s *Service) Displayed() []domain.Candidate {
	if s.state.Active {
		return s.state.Results
	}
	return s.original()
}

// Query returns the current search query.
func (s *Service) Query() string {
	return s.state.Query
}

// IsActive reports whether search results are on display.
func (s *Service) IsActive() bool {
	return s.state.Active
}

func (s *Service) clearSearch() {
	s.state.Query = ""
	s.state.Results = nil
	s.state.Active = false
}

func (s *Service) original() []domain.Candidate {
	items := make([]domain.Candidate, len(s.state.Original))
	copy(items, s.state.Original)
	return items
}

// ContainsMatcher is the local matcher used by panes without a remote search
// service: case-insensitive substring match on name or slug.
func ContainsMatcher(query string, original []domain.Candidate) []domain.Candidate {
	query = strings.ToLower(query)
	var matches []domain.Candidate
	for _, c := range original {
		if strings.Contains(strings.ToLower(c.Name), query) || strings.Contains(strings.ToLower(c.Slug), query) {
			matches = append(matches, c)
		}
	}
	return matches
}
