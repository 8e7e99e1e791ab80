package selection

import (
	"quotacard/internal/domain"
	"quotacard/internal/eventbus"
)

// Service handles selection logic for one candidate list (authors or tags).
// Toggling is the only mutation after load; rendering derives everything
// from Items, so the displayed selection can never drift from this list.
type Service struct {
	kind  domain.SelectionKind
	state *State
	bus   eventbus.EventBus
}

// NewService creates a new selection service
func NewService(kind domain.SelectionKind, bus eventbus.EventBus) *Service {
	return &Service{
		kind:  kind,
		state: &State{},
		bus:   bus,
	}
}

// Kind returns which selection list this service owns.
func (s *Service) Kind() domain.SelectionKind {
	return s.kind
}

// Toggle removes the candidate when its slug is already selected and appends
// it otherwise. A candidate without a slug is not a real list item and is
// ignored. Returns true when the list changed; toggling the same candidate
// twice restores the previous list, order included.
func (s *Service) Toggle(c domain.Candidate) bool {
	if c.Slug == "" {
		return false
	}

	for i, item := range s.state.Items {
		if item.Slug == c.Slug {
			removed := item
			s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
			s.bus.Publish(eventbus.SelectionChangedEvent{
				Kind:    s.kind,
				Removed: []domain.Candidate{removed},
				Total:   len(s.state.Items),
			})
			return true
		}
	}

	added := domain.Candidate{Name: c.Name, Slug: c.Slug}
	s.state.Items = append(s.state.Items, added)
	s.bus.Publish(eventbus.SelectionChangedEvent{
		Kind:  s.kind,
		Added: []domain.Candidate{added},
		Total: len(s.state.Items),
	})
	return true
}

// Replace installs a previously stored selection, deduplicating by slug and
// keeping the first occurrence. It publishes nothing; loading a selection is
// not a user mutation and must not trigger a save.
func (s *Service) Replace(items []domain.Candidate) {
	s.state.Items = nil
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Slug == "" || seen[item.Slug] {
			continue
		}
		seen[item.Slug] = true
		s.state.Items = append(s.state.Items, item)
	}
}

// IsSelected checks if a slug is in the selection list.
func (s *Service) IsSelected(slug string) bool {
	if slug == "" {
		return false
	}
	for _, item := range s.state.Items {
		if item.Slug == slug {
			return true
		}
	}
	return false
}

// Items returns a copy of the selection list in order.
func (s *Service) Items() []domain.Candidate {
	items := make([]domain.Candidate, len(s.state.Items))
	copy(items, s.state.Items)
	return items
}

// Count returns the number of selected candidates.
func (s *Service) Count() int {
	return len(s.state.Items)
}
