package quotable

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"quotacard/internal/domain"
	"quotacard/internal/eventbus"
	"quotacard/internal/hass"
)

// Domain is the backend integration this editor configures.
const Domain = "quotable"

// Remote procedures contracted with the quotable integration.
const (
	serviceFetchAllAuthors     = "fetch_all_authors"
	serviceFetchAllTags        = "fetch_all_tags"
	serviceSearchAuthors       = "search_authors"
	serviceUpdateConfiguration = "update_configuration"
	serviceFetchAQuote         = "fetch_a_quote"
)

const callTimeout = 15 * time.Second

// Service wraps the quotable integration's remote procedures and executes
// the save/search/quote requests published on the bus. Each request runs in
// its own goroutine; superseded in-flight calls are not cancelled, so a slow
// earlier call can land after a later one. That matches the card's original
// behavior and is documented as an accepted limitation.
type Service struct {
	bus      eventbus.EventBus
	client   hass.Client
	entityID string
	quotes   *rate.Limiter
}

// NewService creates the backend service and subscribes it to request
// events.
func NewService(bus eventbus.EventBus, client hass.Client, entityID string) *Service {
	s := &Service{
		bus:      bus,
		client:   client,
		entityID: entityID,
		// Every save triggers a quote refresh; a toggle burst should not
		// turn into a request burst against the upstream quote API.
		quotes: rate.NewLimiter(rate.Every(2*time.Second), 2),
	}

	bus.Subscribe(eventbus.EventSaveRequested, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.SaveRequestedEvent); ok {
			go s.saveAndNotify(event.Config)
		}
	})
	bus.Subscribe(eventbus.EventSearchRequested, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.SearchRequestedEvent); ok {
			go s.searchAndNotify(event.Query)
		}
	})
	bus.Subscribe(eventbus.EventQuoteRequested, func(e eventbus.DomainEvent) {
		if _, ok := e.(eventbus.QuoteRequestedEvent); ok {
			go s.quoteAndNotify()
		}
	})

	return s
}

// Load recovers any stored configuration and fetches both candidate lists.
// Both fetches must succeed before the editor may render; any failure
// publishes LoadFailed and leaves the editor unrendered.
func (s *Service) Load(ctx context.Context) error {
	if s.entityID == "" {
		err := fmt.Errorf("no target entity configured")
		s.bus.Publish(eventbus.LoadFailedEvent{Err: err})
		return err
	}

	stored := s.LoadStoredConfig(ctx)

	authors, err := s.FetchAllAuthors(ctx)
	if err != nil {
		log.Printf("Load aborted: %v", err)
		s.bus.Publish(eventbus.LoadFailedEvent{Err: err})
		return err
	}

	tags, err := s.FetchAllTags(ctx)
	if err != nil {
		log.Printf("Load aborted: %v", err)
		s.bus.Publish(eventbus.LoadFailedEvent{Err: err})
		return err
	}

	s.bus.Publish(eventbus.LoadCompletedEvent{
		Authors: authors,
		Tags:    tags,
		Stored:  stored,
	})
	return nil
}

// LoadStoredConfig reads the previously saved selection, styles and interval
// from the entity's reported attributes. Absent attributes (or an
// unreadable state store) degrade to the defaults: empty selections, blank
// colors, zero interval.
func (s *Service) LoadStoredConfig(ctx context.Context) domain.CardConfig {
	cfg := domain.CardConfig{
		EntityID:      s.entityID,
		UpdateMinutes: "0",
	}

	state, err := s.client.GetState(ctx, s.entityID)
	if err != nil {
		log.Printf("No stored state for %s: %v", s.entityID, err)
		return cfg
	}
	if len(state.Attributes) == 0 {
		return cfg
	}

	var attrs struct {
		SelectedAuthors []domain.Candidate `json:"selected_authors"`
		SelectedTags    []domain.Candidate `json:"selected_tags"`
		Styles          domain.Styles      `json:"styles"`
		UpdateFrequency int                `json:"update_frequency"`
	}
	if err := json.Unmarshal(state.Attributes, &attrs); err != nil {
		log.Printf("Ignoring malformed attributes for %s: %v", s.entityID, err)
		return cfg
	}

	cfg.SelectedAuthors = attrs.SelectedAuthors
	cfg.SelectedTags = attrs.SelectedTags
	cfg.Styles = attrs.Styles
	cfg.UpdateMinutes = strconv.Itoa(attrs.UpdateFrequency / 60)
	return cfg
}

// FetchAllAuthors fetches the full candidate author list.
func (s *Service) FetchAllAuthors(ctx context.Context) ([]domain.Candidate, error) {
	return s.fetchCandidates(ctx, serviceFetchAllAuthors, nil)
}

// FetchAllTags fetches the full candidate tag list.
func (s *Service) FetchAllTags(ctx context.Context) ([]domain.Candidate, error) {
	return s.fetchCandidates(ctx, serviceFetchAllTags, nil)
}

// SearchAuthors fetches the candidate authors matching a free-text query.
func (s *Service) SearchAuthors(ctx context.Context, query string) ([]domain.Candidate, error) {
	return s.fetchCandidates(ctx, serviceSearchAuthors, map[string]any{"query": query})
}

// SaveConfiguration pushes the full configuration to the backend. The
// backend acknowledges without a payload; resolving without error is the
// only success signal.
func (s *Service) SaveConfiguration(ctx context.Context, cfg domain.CardConfig) error {
	_, err := s.client.CallService(ctx, hass.ServiceCall{
		Domain:  Domain,
		Service: serviceUpdateConfiguration,
		Data: map[string]any{
			"entity_id":        s.entityID,
			"selected_tags":    domain.Slugs(cfg.SelectedTags),
			"selected_authors": domain.Slugs(cfg.SelectedAuthors),
			"update_frequency": cfg.UpdateFrequencySeconds(),
			"styles": map[string]any{
				"bg_color":   cfg.Styles.BgColor,
				"text_color": cfg.Styles.TextColor,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("update_configuration: %w", err)
	}
	return nil
}

// FetchAQuote instructs the backend to produce a new current quote and
// returns it for preview purposes. The viewing card re-reads entity state on
// its own; nothing here depends on the returned value.
func (s *Service) FetchAQuote(ctx context.Context) (*domain.Quote, error) {
	resp, err := s.call(ctx, serviceFetchAQuote, nil)
	if err != nil {
		return nil, err
	}

	// The integration answers with a single-entry content->author map.
	var quotes map[string]string
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &quotes); err != nil {
			return nil, fmt.Errorf("%s: malformed quote payload: %w", serviceFetchAQuote, err)
		}
	}
	for content, author := range quotes {
		return &domain.Quote{Content: content, Author: author, FetchedAt: time.Now()}, nil
	}
	return nil, fmt.Errorf("%s: empty quote payload", serviceFetchAQuote)
}

// fetchCandidates runs one responding service call and decodes its candidate
// list payload.
func (s *Service) fetchCandidates(ctx context.Context, service string, extra map[string]any) ([]domain.Candidate, error) {
	resp, err := s.call(ctx, service, extra)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}

	var candidates []domain.Candidate
	if err := json.Unmarshal(resp.Data, &candidates); err != nil {
		return nil, fmt.Errorf("%s: malformed candidate payload: %w", service, err)
	}
	return candidates, nil
}

// call invokes one responding quotable service with the entity id merged
// into the payload.
func (s *Service) call(ctx context.Context, service string, extra map[string]any) (*hass.ServiceResponse, error) {
	data := map[string]any{"entity_id": s.entityID}
	for k, v := range extra {
		data[k] = v
	}

	resp, err := s.client.CallService(ctx, hass.ServiceCall{
		Domain:         Domain,
		Service:        service,
		ReturnResponse: true,
		Data:           data,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", service, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s: backend reported failure", service)
	}
	return resp, nil
}

// saveAndNotify pushes the configuration, emits the change notification and
// chains a quote refresh. Failures are logged and published, never surfaced.
func (s *Service) saveAndNotify(cfg domain.CardConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := s.SaveConfiguration(ctx, cfg); err != nil {
		log.Printf("Save failed: %v", err)
		s.bus.Publish(eventbus.SaveFailedEvent{Err: err})
		return
	}

	s.bus.Publish(eventbus.ConfigSavedEvent{Config: cfg})
	s.bus.Publish(eventbus.QuoteRequestedEvent{})
}

// searchAndNotify runs one remote author search. On failure the previously
// displayed list stays as-is.
func (s *Service) searchAndNotify(query string) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	results, err := s.SearchAuthors(ctx, query)
	if err != nil {
		log.Printf("Search %q failed: %v", query, err)
		s.bus.Publish(eventbus.SearchFailedEvent{Query: query, Err: err})
		return
	}

	s.bus.Publish(eventbus.SearchCompletedEvent{Query: query, Results: results})
}

// quoteAndNotify triggers a quote refresh, rate limited across save bursts.
func (s *Service) quoteAndNotify() {
	if !s.quotes.Allow() {
		log.Printf("Quote refresh throttled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	quote, err := s.FetchAQuote(ctx)
	if err != nil {
		log.Printf("Quote refresh failed: %v", err)
		s.bus.Publish(eventbus.ErrorEvent{Message: "quote refresh failed", Err: err})
		return
	}

	s.bus.Publish(eventbus.QuoteFetchedEvent{Quote: *quote})
}
