package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventLoadCompleted    EventType = "LoadCompleted"
	EventLoadFailed       EventType = "LoadFailed"
	EventSearchRequested  EventType = "SearchRequested"
	EventSearchCompleted  EventType = "SearchCompleted"
	EventSearchFailed     EventType = "SearchFailed"
	EventSelectionChanged EventType = "SelectionChanged"
	EventSaveRequested    EventType = "SaveRequested"
	EventConfigSaved      EventType = "ConfigSaved"
	EventSaveFailed       EventType = "SaveFailed"
	EventQuoteRequested   EventType = "QuoteRequested"
	EventQuoteFetched     EventType = "QuoteFetched"
	EventError            EventType = "Error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// LoadCompletedEvent is emitted once both candidate lists have been fetched
// and any previously stored configuration has been recovered.
type LoadCompletedEvent struct {
	Authors []Candidate
	Tags    []Candidate
	Stored  CardConfig
}

func (e LoadCompletedEvent) Type() EventType { return EventLoadCompleted }

// LoadFailedEvent is emitted when the initial load aborts. The editor stays
// unrendered; the reason only goes to the log.
type LoadFailedEvent struct {
	Err error
}

func (e LoadFailedEvent) Type() EventType { return EventLoadFailed }

// SearchRequestedEvent asks the backend service to run an author search.
type SearchRequestedEvent struct {
	Query string
}

func (e SearchRequestedEvent) Type() EventType { return EventSearchRequested }

// SearchCompletedEvent carries the results of a remote author search.
type SearchCompletedEvent struct {
	Query   string
	Results []Candidate
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when a remote search fails. The previously
// displayed list stays on screen.
type SearchFailedEvent struct {
	Query string
	Err   error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// SelectionChangedEvent is emitted after every toggle that changed a
// selection list.
type SelectionChangedEvent struct {
	Kind    SelectionKind
	Added   []Candidate
	Removed []Candidate
	Total   int
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// SaveRequestedEvent asks the backend service to push the full configuration.
// It is published after every mutating interaction; there is no apply step.
type SaveRequestedEvent struct {
	Config CardConfig
}

func (e SaveRequestedEvent) Type() EventType { return EventSaveRequested }

// ConfigSavedEvent is the change notification emitted after a successful
// push, carrying the unchanged configuration so listeners can re-read it.
type ConfigSavedEvent struct {
	Config CardConfig
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// SaveFailedEvent is emitted when a configuration push fails.
type SaveFailedEvent struct {
	Err error
}

func (e SaveFailedEvent) Type() EventType { return EventSaveFailed }

// QuoteRequestedEvent asks the backend service to produce a new quote.
type QuoteRequestedEvent struct{}

func (e QuoteRequestedEvent) Type() EventType { return EventQuoteRequested }

// QuoteFetchedEvent carries a freshly produced quote for the preview line.
type QuoteFetchedEvent struct {
	Quote Quote
}

func (e QuoteFetchedEvent) Type() EventType { return EventQuoteFetched }

// ErrorEvent is emitted when an operation fails in a way no other event
// covers.
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }
