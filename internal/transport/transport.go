// Package transport sends authenticated JSON requests to the remote API. It
// is the only component that mutates credentials in response to an error: a
// 401 triggers at most one token refresh and at most one retry, and a failed
// refresh wipes the credential store.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/metrics"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 4 << 20

	msgCannotConnect   = "cannot connect to server"
	msgRequestFailed   = "request failed"
	msgInvalidResponse = "invalid response from server"
	msgCancelled       = "request cancelled"
)

// TokenStore is the slice of the credential store the transport needs.
type TokenStore interface {
	Tokens() domain.TokenPair
	SetTokens(access, refresh string)
	Clear()
}

// Options describes one request. Body, when non-nil, is JSON-encoded. Header
// values override the defaults.
type Options struct {
	Method string
	Body   any
	Header http.Header
}

// Config holds configuration for creating a Transport.
type Config struct {
	// BaseURL is the API root, e.g. "http://127.0.0.1:8000/api".
	BaseURL string
	// HTTPClient is used for all requests. If nil, a client with Timeout is built.
	HTTPClient *http.Client
	Timeout    time.Duration
	Metrics    *metrics.Metrics
}

// Transport issues requests against the API on behalf of one credential store.
type Transport struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	store   TokenStore
	metrics *metrics.Metrics

	refreshGroup singleflight.Group

	mu             sync.Mutex
	expiredHandler []func()
}

// New creates a transport bound to store.
func New(cfg Config, store TokenStore) (*Transport, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("transport: BaseURL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	} else if client.Timeout > 0 {
		timeout = client.Timeout
	}

	return &Transport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		timeout: timeout,
		store:   store,
		metrics: cfg.Metrics,
	}, nil
}

// OnSessionExpired registers fn to run after a failed refresh has cleared
// the credential store.
func (t *Transport) OnSessionExpired(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expiredHandler = append(t.expiredHandler, fn)
}

// Close releases idle connections.
func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

type response struct {
	status int
	body   []byte
}

// Request sends opts to endpoint and decodes the JSON response into out (which
// may be nil). Every failure is a *domain.SessionError.
func (t *Transport) Request(ctx context.Context, endpoint string, opts Options, out any) error {
	var payload []byte
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return &domain.SessionError{Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		payload = encoded
	}

	tokens := t.store.Tokens()
	resp, err := t.send(ctx, endpoint, opts, payload, tokens.Access)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && endpoint != EndpointTokenRefresh {
		// Re-read: a concurrent call may have refreshed or cleared meanwhile.
		current := t.store.Tokens()
		switch {
		case current.HasAccess() && current.Access != tokens.Access:
			resp, err = t.send(ctx, endpoint, opts, payload, current.Access)
			if err != nil {
				return err
			}
		case current.HasRefresh():
			access, err := t.refresh(ctx, current.Refresh)
			if err != nil {
				return err
			}
			resp, err = t.send(ctx, endpoint, opts, payload, access)
			if err != nil {
				return err
			}
		}
	}

	return t.decode(endpoint, resp, out)
}

func (t *Transport) send(ctx context.Context, endpoint string, opts Options, payload []byte, access string) (*response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+endpoint, body)
	if err != nil {
		return nil, &domain.SessionError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	httpResp, err := t.client.Do(req)
	if err != nil && ctx.Err() != nil {
		t.metrics.ObserveRequest("cancelled")
		return nil, cancelled(ctx.Err())
	}
	if err != nil {
		t.metrics.ObserveRequest("network_error")
		log.Warn().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("api request failed")
		return nil, &domain.SessionError{Status: 0, Message: msgCannotConnect, Details: err.Error()}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		t.metrics.ObserveRequest("network_error")
		return nil, &domain.SessionError{Status: 0, Message: msgCannotConnect, Details: err.Error()}
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		t.metrics.ObserveRequest("ok")
	} else {
		t.metrics.ObserveRequest("http_error")
	}

	log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", httpResp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api request")

	return &response{status: httpResp.StatusCode, body: data}, nil
}

// cancelled reports a call abandoned by its own context. It says nothing
// about the session.
func cancelled(err error) *domain.SessionError {
	return &domain.SessionError{Status: 0, Message: msgCancelled, Details: err.Error()}
}

// decode turns a response into out or a SessionError.
func (t *Transport) decode(endpoint string, resp *response, out any) error {
	trimmed := bytes.TrimSpace(resp.body)

	var decoded any
	var parseErr error
	if len(trimmed) > 0 {
		parseErr = json.Unmarshal(trimmed, &decoded)
	}

	if resp.status < 200 || resp.status >= 300 {
		if parseErr != nil {
			decoded = nil
		}
		return &domain.SessionError{
			Status:  resp.status,
			Message: errorMessage(decoded),
			Details: decoded,
		}
	}

	if parseErr != nil {
		log.Warn().Err(parseErr).Str("endpoint", endpoint).Msg("api returned a non-JSON body")
		return &domain.SessionError{Status: resp.status, Message: msgInvalidResponse, Details: string(trimmed)}
	}

	if out == nil || len(trimmed) == 0 {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return &domain.SessionError{Status: resp.status, Message: msgInvalidResponse, Details: err.Error()}
	}
	return nil
}

// errorMessage picks error, then message, then detail from a decoded body.
func errorMessage(body any) string {
	fields, ok := body.(map[string]any)
	if !ok {
		return msgRequestFailed
	}
	for _, key := range []string{"error", "message", "detail"} {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	return msgRequestFailed
}
