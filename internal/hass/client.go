package hass

import (
	"context"
	"encoding/json"
	"errors"

	"quotacard/internal/domain"
)

// ErrEntityNotFound is returned by GetState when the state store has no
// entry for the requested entity.
var ErrEntityNotFound = errors.New("entity not found")

// ServiceCall describes one remote procedure invocation against a Home
// Assistant integration.
type ServiceCall struct {
	Domain         string
	Service        string
	ReturnResponse bool
	Data           map[string]any
}

// ServiceResponse is the payload a responding service resolves to. When the
// call was made without ReturnResponse only Success is meaningful.
type ServiceResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Client is the remote-call boundary to a Home Assistant instance. Both the
// WebSocket and the REST transport satisfy it; everything above this
// interface is transport-agnostic.
type Client interface {
	CallService(ctx context.Context, call ServiceCall) (*ServiceResponse, error)
	GetState(ctx context.Context, entityID string) (*domain.EntityState, error)
	Close() error
}
