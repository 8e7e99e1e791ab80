package quotable

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotacard/internal/domain"
	"quotacard/internal/eventbus"
	"quotacard/internal/hass"
)

// fakeClient records service calls and answers from canned responses.
type fakeClient struct {
	mu        sync.Mutex
	calls     []hass.ServiceCall
	responses map[string]*hass.ServiceResponse
	errors    map[string]error
	state     *domain.EntityState
	stateErr  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses: make(map[string]*hass.ServiceResponse),
		errors:    make(map[string]error),
	}
}

func (f *fakeClient) CallService(_ context.Context, call hass.ServiceCall) (*hass.ServiceResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if err := f.errors[call.Service]; err != nil {
		return nil, err
	}
	if resp, ok := f.responses[call.Service]; ok {
		return resp, nil
	}
	return &hass.ServiceResponse{Success: true}, nil
}

func (f *fakeClient) GetState(context.Context, string) (*domain.EntityState, error) {
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	if f.state == nil {
		return nil, hass.ErrEntityNotFound
	}
	return f.state, nil
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) recordedCalls() []hass.ServiceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]hass.ServiceCall, len(f.calls))
	copy(calls, f.calls)
	return calls
}

func respondWith(data string) *hass.ServiceResponse {
	return &hass.ServiceResponse{Success: true, Data: json.RawMessage(data)}
}

func TestSaveConfigurationPayload(t *testing.T) {
	client := newFakeClient()
	svc := NewService(eventbus.New(), client, "sensor.quotable")

	err := svc.SaveConfiguration(context.Background(), domain.CardConfig{
		SelectedAuthors: []domain.Candidate{
			{Name: "Seneca", Slug: "seneca"},
			{Name: "Marcus Aurelius", Slug: "marcus-aurelius"},
		},
		SelectedTags:  []domain.Candidate{{Name: "Wisdom", Slug: "wisdom"}},
		UpdateMinutes: "12",
		Styles:        domain.Styles{BgColor: "#112233", TextColor: "#ffffff"},
	})
	require.NoError(t, err)

	calls := client.recordedCalls()
	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, Domain, call.Domain)
	assert.Equal(t, "update_configuration", call.Service)
	assert.False(t, call.ReturnResponse, "Saves are fire-and-forget, the ack has no payload")
	assert.Equal(t, "sensor.quotable", call.Data["entity_id"])
	assert.Equal(t, []string{"seneca", "marcus-aurelius"}, call.Data["selected_authors"],
		"The save payload carries slugs, in selection order")
	assert.Equal(t, []string{"wisdom"}, call.Data["selected_tags"])
	assert.Equal(t, 720, call.Data["update_frequency"], "Interval minutes become seconds on the wire")
	assert.Equal(t, map[string]any{"bg_color": "#112233", "text_color": "#ffffff"}, call.Data["styles"])
}

func TestSaveConfigurationNonNumericIntervalSendsZero(t *testing.T) {
	client := newFakeClient()
	svc := NewService(eventbus.New(), client, "sensor.quotable")

	err := svc.SaveConfiguration(context.Background(), domain.CardConfig{UpdateMinutes: "soon"})
	require.NoError(t, err)

	calls := client.recordedCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 0, calls[0].Data["update_frequency"])
}

func TestLoadPublishesCompletedWithStoredConfig(t *testing.T) {
	client := newFakeClient()
	client.responses[serviceFetchAllAuthors] = respondWith(`[{"name":"Seneca","slug":"seneca"}]`)
	client.responses[serviceFetchAllTags] = respondWith(`[{"name":"Wisdom","slug":"wisdom"}]`)
	client.state = &domain.EntityState{
		EntityID: "sensor.quotable",
		State:    "Fortune favors the bold.",
		Attributes: json.RawMessage(`{
			"selected_authors":[{"name":"Seneca","slug":"seneca"}],
			"selected_tags":[],
			"styles":{"bg_color":"#111111","text_color":"#eeeeee"},
			"update_frequency":600
		}`),
	}

	bus := eventbus.New()
	var completed []eventbus.LoadCompletedEvent
	bus.Subscribe(eventbus.EventLoadCompleted, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.LoadCompletedEvent); ok {
			completed = append(completed, event)
		}
	})

	svc := NewService(bus, client, "sensor.quotable")
	require.NoError(t, svc.Load(context.Background()))

	require.Len(t, completed, 1)
	event := completed[0]
	assert.Equal(t, []domain.Candidate{{Name: "Seneca", Slug: "seneca"}}, event.Authors)
	assert.Equal(t, []domain.Candidate{{Name: "Wisdom", Slug: "wisdom"}}, event.Tags)
	assert.Equal(t, "10", event.Stored.UpdateMinutes, "Stored seconds come back as minutes")
	assert.Equal(t, "#111111", event.Stored.Styles.BgColor)
	assert.Equal(t, []domain.Candidate{{Name: "Seneca", Slug: "seneca"}}, event.Stored.SelectedAuthors)
}

func TestLoadFailsWhenAnyFetchFails(t *testing.T) {
	client := newFakeClient()
	client.errors[serviceFetchAllAuthors] = fmt.Errorf("boom")

	bus := eventbus.New()
	var failed, completed int
	bus.Subscribe(eventbus.EventLoadFailed, func(eventbus.DomainEvent) { failed++ })
	bus.Subscribe(eventbus.EventLoadCompleted, func(eventbus.DomainEvent) { completed++ })

	svc := NewService(bus, client, "sensor.quotable")
	err := svc.Load(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, failed)
	assert.Zero(t, completed, "A failed fetch must not complete the load")
}

func TestLoadFailsWithoutEntityID(t *testing.T) {
	bus := eventbus.New()
	var failed int
	bus.Subscribe(eventbus.EventLoadFailed, func(eventbus.DomainEvent) { failed++ })

	svc := NewService(bus, newFakeClient(), "")

	require.Error(t, svc.Load(context.Background()))
	assert.Equal(t, 1, failed)
}

func TestLoadStoredConfigDefaultsWhenStateUnavailable(t *testing.T) {
	client := newFakeClient()
	client.stateErr = fmt.Errorf("connection reset")

	svc := NewService(eventbus.New(), client, "sensor.quotable")
	cfg := svc.LoadStoredConfig(context.Background())

	assert.Equal(t, "sensor.quotable", cfg.EntityID)
	assert.Equal(t, "0", cfg.UpdateMinutes)
	assert.Empty(t, cfg.SelectedAuthors)
	assert.Empty(t, cfg.SelectedTags)
	assert.Empty(t, cfg.Styles.BgColor)
}

func TestLoadStoredConfigDefaultsOnMalformedAttributes(t *testing.T) {
	client := newFakeClient()
	client.state = &domain.EntityState{
		EntityID:   "sensor.quotable",
		Attributes: json.RawMessage(`{"update_frequency":"not a number"}`),
	}

	svc := NewService(eventbus.New(), client, "sensor.quotable")
	cfg := svc.LoadStoredConfig(context.Background())

	assert.Equal(t, "0", cfg.UpdateMinutes)
	assert.Empty(t, cfg.SelectedAuthors)
}

func TestFetchAQuoteDecodesContentAuthorMap(t *testing.T) {
	client := newFakeClient()
	client.responses[serviceFetchAQuote] = respondWith(`{"The obstacle is the way.":"Marcus Aurelius"}`)

	svc := NewService(eventbus.New(), client, "sensor.quotable")
	quote, err := svc.FetchAQuote(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "The obstacle is the way.", quote.Content)
	assert.Equal(t, "Marcus Aurelius", quote.Author)
	assert.WithinDuration(t, time.Now(), quote.FetchedAt, time.Minute)
}

func TestFetchAQuoteEmptyPayloadIsAnError(t *testing.T) {
	client := newFakeClient()
	client.responses[serviceFetchAQuote] = respondWith(`{}`)

	svc := NewService(eventbus.New(), client, "sensor.quotable")
	_, err := svc.FetchAQuote(context.Background())

	assert.Error(t, err)
}

func TestSearchAuthorsSendsQuery(t *testing.T) {
	client := newFakeClient()
	client.responses[serviceSearchAuthors] = respondWith(`[{"name":"Seneca","slug":"seneca"}]`)

	svc := NewService(eventbus.New(), client, "sensor.quotable")
	results, err := svc.SearchAuthors(context.Background(), "sen")

	require.NoError(t, err)
	assert.Equal(t, []domain.Candidate{{Name: "Seneca", Slug: "seneca"}}, results)

	calls := client.recordedCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].ReturnResponse)
	assert.Equal(t, "sen", calls[0].Data["query"])
	assert.Equal(t, "sensor.quotable", calls[0].Data["entity_id"])
}

func TestBackendReportedFailureIsAnError(t *testing.T) {
	client := newFakeClient()
	client.responses[serviceFetchAllAuthors] = &hass.ServiceResponse{Success: false}

	svc := NewService(eventbus.New(), client, "sensor.quotable")
	_, err := svc.FetchAllAuthors(context.Background())

	assert.Error(t, err)
}

func TestSaveRequestChainsQuoteRefresh(t *testing.T) {
	client := newFakeClient()
	client.responses[serviceFetchAQuote] = respondWith(`{"Know thyself.":"Socrates"}`)

	bus := eventbus.New()
	saved := make(chan eventbus.ConfigSavedEvent, 1)
	fetched := make(chan eventbus.QuoteFetchedEvent, 1)
	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigSavedEvent); ok {
			saved <- event
		}
	})
	bus.Subscribe(eventbus.EventQuoteFetched, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.QuoteFetchedEvent); ok {
			fetched <- event
		}
	})

	NewService(bus, client, "sensor.quotable")
	bus.Publish(eventbus.SaveRequestedEvent{Config: domain.CardConfig{UpdateMinutes: "1"}})

	select {
	case event := <-saved:
		assert.Equal(t, "1", event.Config.UpdateMinutes)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the save notification")
	}

	select {
	case event := <-fetched:
		assert.Equal(t, "Socrates", event.Quote.Author)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the chained quote refresh")
	}
}

func TestSaveFailureIsPublishedNotSurfaced(t *testing.T) {
	client := newFakeClient()
	client.errors[serviceUpdateConfiguration] = fmt.Errorf("unavailable")

	bus := eventbus.New()
	failed := make(chan eventbus.SaveFailedEvent, 1)
	quoteRequests := make(chan struct{}, 1)
	bus.Subscribe(eventbus.EventSaveFailed, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.SaveFailedEvent); ok {
			failed <- event
		}
	})

	NewService(bus, client, "sensor.quotable")
	bus.Subscribe(eventbus.EventQuoteRequested, func(eventbus.DomainEvent) {
		quoteRequests <- struct{}{}
	})

	bus.Publish(eventbus.SaveRequestedEvent{Config: domain.CardConfig{}})

	select {
	case event := <-failed:
		assert.Error(t, event.Err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the save failure notification")
	}

	select {
	case <-quoteRequests:
		t.Fatal("a failed save must not chain a quote refresh")
	case <-time.After(100 * time.Millisecond):
	}
}
