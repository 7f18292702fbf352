package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/akosarev/storefront/internal/models"
)

// ErrUpstream marks a business failure reported by the commerce API
// (success=false in the response envelope). Transport errors are returned
// as-is; callers treat both classes the same way.
var ErrUpstream = errors.New("upstream rejected request")

// Envelope is the wire format of every commerce API response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// TokenSource yields the session credential attached to every request.
type TokenSource func(ctx context.Context) (string, error)

func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

type ClientConfig struct {
	BaseURL string
	Tokens  TokenSource
	// HTTPClient is optional; pass a shared client to reuse one connection
	// pool across per-user API clients.
	HTTPClient *http.Client
}

// Client talks to the commerce cart API. All calls go through a circuit
// breaker so a flapping upstream fails fast instead of tying up callers.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[json.RawMessage]
}

func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = NewHTTPClient()
	}
	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:    "commerce-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokens:     cfg.Tokens,
		httpClient: hc,
		breaker:    cb,
	}
}

// ViewCart returns the canonical line-item list for the session user.
func (c *Client) ViewCart(ctx context.Context) ([]models.LineItem, error) {
	data, err := c.call(ctx, http.MethodGet, "/view-cart-product", nil)
	if err != nil {
		return nil, err
	}
	var items []models.LineItem
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode cart items: %w", err)
		}
	}
	return items, nil
}

// UpdateQuantity sets the quantity of one line item.
func (c *Client) UpdateQuantity(ctx context.Context, lineItemID string, quantity int) error {
	body := map[string]any{"lineItemId": lineItemID, "quantity": quantity}
	_, err := c.call(ctx, http.MethodPost, "/update-cart-product", body)
	return err
}

// DeleteLineItem removes one line item from the cart.
func (c *Client) DeleteLineItem(ctx context.Context, lineItemID string) error {
	body := map[string]any{"lineItemId": lineItemID}
	_, err := c.call(ctx, http.MethodPost, "/delete-cart-product", body)
	return err
}

func (c *Client) call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return c.breaker.Execute(func() (json.RawMessage, error) {
		return c.do(ctx, method, path, body)
	})
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("session token: %w", err)
		}
		if token != "" {
			req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s: %w", msg, ErrUpstream)
	}
	return env.Data, nil
}
