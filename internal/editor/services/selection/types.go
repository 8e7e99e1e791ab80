package selection

import "quotacard/internal/domain"

// State holds one ordered selection list. Membership is keyed by slug; the
// list never holds two entries with the same slug.
type State struct {
	Items []domain.Candidate
}
