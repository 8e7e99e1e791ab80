package editor

import "quotacard/internal/domain"

// EventMsg wraps a domain event forwarded from the bus into the UI loop.
type EventMsg struct {
	Event domain.DomainEvent
}

// pagerClosedMsg is delivered when the quote history pager exits.
type pagerClosedMsg struct {
	err error
}
