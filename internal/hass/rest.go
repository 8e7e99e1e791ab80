package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"quotacard/internal/domain"
)

const restRequestTimeout = 15 * time.Second

// RESTClient talks to the Home Assistant REST API. It is the fallback
// transport for setups where the WebSocket API is unreachable, e.g. behind
// proxies that only pass plain HTTP.
type RESTClient struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

// NewRESTClient creates a REST transport for the given base URL and
// long-lived access token.
func NewRESTClient(serverURL, token string) *RESTClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = restRequestTimeout
	client.Logger = nil

	return &RESTClient{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		token:   token,
		http:    client,
	}
}

// CallService invokes one remote procedure via POST
// /api/services/<domain>/<service>.
func (c *RESTClient) CallService(ctx context.Context, call ServiceCall) (*ServiceResponse, error) {
	endpoint := fmt.Sprintf("%s/api/services/%s/%s", c.baseURL, call.Domain, call.Service)
	if call.ReturnResponse {
		endpoint += "?return_response"
	}

	body, err := json.Marshal(call.Data)
	if err != nil {
		return nil, fmt.Errorf("call_service %s.%s: failed to encode payload: %w", call.Domain, call.Service, err)
	}

	raw, status, err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("call_service %s.%s: %w", call.Domain, call.Service, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("call_service %s.%s: unexpected status %d", call.Domain, call.Service, status)
	}

	if !call.ReturnResponse {
		return &ServiceResponse{Success: true}, nil
	}

	response := gjson.GetBytes(raw, "service_response")
	if !response.Exists() {
		return nil, fmt.Errorf("call_service %s.%s: response payload missing", call.Domain, call.Service)
	}
	out := &ServiceResponse{
		Success: response.Get("success").Bool(),
	}
	if data := response.Get("data"); data.Exists() {
		out.Data = json.RawMessage(data.Raw)
	}
	return out, nil
}

// GetState reads one entity from the state store via GET /api/states/<id>.
func (c *RESTClient) GetState(ctx context.Context, entityID string) (*domain.EntityState, error) {
	endpoint := fmt.Sprintf("%s/api/states/%s", c.baseURL, entityID)

	raw, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("get state %s: %w", entityID, err)
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("get state %s: %w", entityID, ErrEntityNotFound)
	default:
		return nil, fmt.Errorf("get state %s: unexpected status %d", entityID, status)
	}

	state := &domain.EntityState{
		EntityID: entityID,
		State:    gjson.GetBytes(raw, "state").String(),
	}
	if attrs := gjson.GetBytes(raw, "attributes"); attrs.Exists() {
		state.Attributes = json.RawMessage(attrs.Raw)
	}
	return state, nil
}

// Close satisfies Client; the REST transport holds no long-lived connection.
func (c *RESTClient) Close() error {
	return nil
}

// do runs one authenticated request and returns the body and status.
func (c *RESTClient) do(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}
