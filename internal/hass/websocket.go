package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quotacard/internal/domain"
)

// ErrConnectionClosed is returned for calls issued or pending after the
// websocket connection went away.
var ErrConnectionClosed = errors.New("websocket connection closed")

const (
	wsHandshakeTimeout = 10 * time.Second
	wsWriteTimeout     = 10 * time.Second

	msgTypeAuthRequired = "auth_required"
	msgTypeAuth         = "auth"
	msgTypeAuthOK       = "auth_ok"
	msgTypeAuthInvalid  = "auth_invalid"
	msgTypeCallService  = "call_service"
	msgTypeGetStates    = "get_states"
	msgTypeResult       = "result"
)

// wsEnvelope is an outgoing command message.
type wsEnvelope struct {
	ID             int64          `json:"id,omitempty"`
	Type           string         `json:"type"`
	AccessToken    string         `json:"access_token,omitempty"`
	Domain         string         `json:"domain,omitempty"`
	Service        string         `json:"service,omitempty"`
	ServiceData    map[string]any `json:"service_data,omitempty"`
	ReturnResponse bool           `json:"return_response,omitempty"`
}

// wsIncoming is an incoming message; fields beyond ID and Type are only set
// for result messages.
type wsIncoming struct {
	ID      int64           `json:"id"`
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *wsCommandError `json:"error"`
	Message string          `json:"message"`
}

type wsCommandError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WebsocketClient speaks the Home Assistant WebSocket API: token handshake,
// then id-correlated commands over one long-lived connection. A single
// reader goroutine routes result messages to the pending call that issued
// them.
type WebsocketClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex // serializes writes to the connection

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan wsIncoming

	done      chan struct{}
	closeOnce sync.Once
}

// DialWebsocket connects to the Home Assistant WebSocket API at serverURL
// (an http(s) or ws(s) base URL) and completes the auth handshake.
func DialWebsocket(ctx context.Context, serverURL, token string) (*WebsocketClient, error) {
	endpoint, err := websocketEndpoint(serverURL)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	c := &WebsocketClient{
		conn:    conn,
		pending: make(map[int64]chan wsIncoming),
		done:    make(chan struct{}),
	}

	if err := c.authenticate(token); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

// websocketEndpoint derives the /api/websocket URL from a base URL.
func websocketEndpoint(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/api/websocket") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/api/websocket"
	}
	return u.String(), nil
}

// authenticate runs the auth_required/auth/auth_ok exchange. It happens
// before the read loop starts, so plain reads are safe here.
func (c *WebsocketClient) authenticate(token string) error {
	var hello wsIncoming
	if err := c.conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("failed to read server hello: %w", err)
	}
	if hello.Type != msgTypeAuthRequired {
		return fmt.Errorf("unexpected hello message type %q", hello.Type)
	}

	if err := c.write(wsEnvelope{Type: msgTypeAuth, AccessToken: token}); err != nil {
		return fmt.Errorf("failed to send auth: %w", err)
	}

	var reply wsIncoming
	if err := c.conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("failed to read auth reply: %w", err)
	}
	switch reply.Type {
	case msgTypeAuthOK:
		return nil
	case msgTypeAuthInvalid:
		return fmt.Errorf("authentication rejected: %s", reply.Message)
	default:
		return fmt.Errorf("unexpected auth reply type %q", reply.Type)
	}
}

// CallService invokes one remote procedure and waits for its result.
func (c *WebsocketClient) CallService(ctx context.Context, call ServiceCall) (*ServiceResponse, error) {
	env := wsEnvelope{
		Type:           msgTypeCallService,
		Domain:         call.Domain,
		Service:        call.Service,
		ServiceData:    call.Data,
		ReturnResponse: call.ReturnResponse,
	}

	result, err := c.roundTrip(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("call_service %s.%s: %w", call.Domain, call.Service, err)
	}

	if !call.ReturnResponse {
		return &ServiceResponse{Success: true}, nil
	}

	// A responding service nests its payload under result.response.
	var wrapper struct {
		Response ServiceResponse `json:"response"`
	}
	if err := json.Unmarshal(result, &wrapper); err != nil {
		return nil, fmt.Errorf("call_service %s.%s: malformed response: %w", call.Domain, call.Service, err)
	}
	return &wrapper.Response, nil
}

// GetState fetches the full state list and picks out one entity. The
// WebSocket API has no single-entity query.
func (c *WebsocketClient) GetState(ctx context.Context, entityID string) (*domain.EntityState, error) {
	result, err := c.roundTrip(ctx, wsEnvelope{Type: msgTypeGetStates})
	if err != nil {
		return nil, fmt.Errorf("get_states: %w", err)
	}

	var states []domain.EntityState
	if err := json.Unmarshal(result, &states); err != nil {
		return nil, fmt.Errorf("get_states: malformed response: %w", err)
	}
	for i := range states {
		if states[i].EntityID == entityID {
			return &states[i], nil
		}
	}
	return nil, fmt.Errorf("get_states: %q: %w", entityID, ErrEntityNotFound)
}

// Close tears down the connection. Pending calls fail with
// ErrConnectionClosed once the read loop exits.
func (c *WebsocketClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// roundTrip registers a pending slot, sends the command and waits for the
// matching result message.
func (c *WebsocketClient) roundTrip(ctx context.Context, env wsEnvelope) (json.RawMessage, error) {
	id, ch := c.register()
	env.ID = id

	if err := c.write(env); err != nil {
		c.unregister(id)
		return nil, err
	}

	select {
	case msg := <-ch:
		if !msg.Success {
			if msg.Error != nil {
				return nil, fmt.Errorf("backend error %s: %s", msg.Error.Code, msg.Error.Message)
			}
			return nil, errors.New("backend reported failure")
		}
		return msg.Result, nil
	case <-c.done:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		c.unregister(id)
		return nil, ctx.Err()
	}
}

func (c *WebsocketClient) register() (int64, chan wsIncoming) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	ch := make(chan wsIncoming, 1)
	c.pending[c.nextID] = ch
	return c.nextID, ch
}

func (c *WebsocketClient) unregister(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

func (c *WebsocketClient) write(env wsEnvelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(env)
}

// readLoop routes result messages to their pending call. Event messages and
// anything else without a pending slot are dropped; this client only issues
// request/response commands.
func (c *WebsocketClient) readLoop() {
	defer close(c.done)
	for {
		var msg wsIncoming
		if err := c.conn.ReadJSON(&msg); err != nil {
			log.Printf("Websocket read loop ending: %v", err)
			return
		}
		if msg.Type != msgTypeResult {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.ID]
		if ok {
			delete(c.pending, msg.ID)
		}
		c.mu.Unlock()

		if ok {
			ch <- msg
		}
	}
}
