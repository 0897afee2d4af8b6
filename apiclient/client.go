package apiclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Alia5/sio2pad/apitypes"
)

// Client wraps a Transport with typed calls for every API route.
type Client struct{ transport *Transport }

// New constructs a client for the API server at addr (host:port).
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport settings.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

func call[T any](ctx context.Context, c *Client, path string, payload any, params map[string]string) (*T, error) {
	raw, err := c.transport.DoCtx(ctx, path, payload, params)
	if err != nil {
		return nil, err
	}
	return parse[T](raw)
}

func portParam(port int) map[string]string {
	return map[string]string{"port": strconv.Itoa(port)}
}

// Ping returns the identity and version of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	return call[apitypes.PingResponse](ctx, c, "ping", nil, nil)
}

// PadList describes both ports with their slots, modes and bound devices.
func (c *Client) PadList() (*apitypes.PadListResponse, error) {
	return c.PadListCtx(context.Background())
}

func (c *Client) PadListCtx(ctx context.Context) (*apitypes.PadListResponse, error) {
	return call[apitypes.PadListResponse](ctx, c, "pad/list", nil, nil)
}

// SetSlot selects the active multitap slot. Port and slot are 1-based.
func (c *Client) SetSlot(port, slot int) (*apitypes.SlotResponse, error) {
	return c.SetSlotCtx(context.Background(), port, slot)
}

func (c *Client) SetSlotCtx(ctx context.Context, port, slot int) (*apitypes.SlotResponse, error) {
	return call[apitypes.SlotResponse](ctx, c, "pad/{port}/slot", strconv.Itoa(slot), portParam(port))
}

// Mode returns the reporting mode of the active slot on a 1-based port.
func (c *Client) Mode(port int) (*apitypes.ModeResponse, error) {
	return c.ModeCtx(context.Background(), port)
}

func (c *Client) ModeCtx(ctx context.Context, port int) (*apitypes.ModeResponse, error) {
	return call[apitypes.ModeResponse](ctx, c, "pad/{port}/mode", nil, portParam(port))
}

// Freeze returns a save state. legacy selects the fixed v3 layout.
func (c *Client) Freeze(legacy bool) ([]byte, error) {
	return c.FreezeCtx(context.Background(), legacy)
}

func (c *Client) FreezeCtx(ctx context.Context, legacy bool) ([]byte, error) {
	var payload any
	if legacy {
		payload = "legacy"
	}
	resp, err := call[apitypes.FreezeResponse](ctx, c, "state/freeze", payload, nil)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return data, nil
}

// Thaw restores a save state produced by Freeze.
func (c *Client) Thaw(state []byte) (*apitypes.ThawResponse, error) {
	return c.ThawCtx(context.Background(), state)
}

func (c *Client) ThawCtx(ctx context.Context, state []byte) (*apitypes.ThawResponse, error) {
	return call[apitypes.ThawResponse](ctx, c, "state/thaw", base64.StdEncoding.EncodeToString(state), nil)
}

// ConfigGet returns the live pad config as JSON.
func (c *Client) ConfigGet() (*apitypes.ConfigResponse, error) {
	return c.ConfigGetCtx(context.Background())
}

func (c *Client) ConfigGetCtx(ctx context.Context) (*apitypes.ConfigResponse, error) {
	return call[apitypes.ConfigResponse](ctx, c, "config/get", nil, nil)
}

// KeyEvent queues a host key press or release. kind is "press" or
// "release", key a keysym name such as "Return" or "x".
func (c *Client) KeyEvent(kind, key string) (*apitypes.KeyEventResponse, error) {
	return c.KeyEventCtx(context.Background(), kind, key)
}

func (c *Client) KeyEventCtx(ctx context.Context, kind, key string) (*apitypes.KeyEventResponse, error) {
	return call[apitypes.KeyEventResponse](ctx, c, "key/{kind}", key, map[string]string{"kind": kind})
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	if err := json.NewDecoder(bytes.NewReader([]byte(data))).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
