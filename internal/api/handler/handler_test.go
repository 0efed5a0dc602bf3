package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/profilesync/internal/api/handler"
	"github.com/Rrens/profilesync/internal/preference"
	"github.com/Rrens/profilesync/internal/storage"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	response := decodeBody(t, rec)
	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name   string
		pinger handler.Pinger
		want   int
	}{
		{"no storage to ping", nil, http.StatusOK},
		{"storage up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK},
		{"storage down", pingerFunc(func(context.Context) error { return errors.New("connection refused") }), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ReadyCheck(tt.pinger)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestPreferencesHandler(t *testing.T) {
	h := handler.NewPreferencesHandler(preference.NewStore(storage.NewMemory(), time.Second))

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil))
	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["theme"] != "system" || data["fontSize"] != float64(14) {
		t.Errorf("expected defaults, got %v", data)
	}

	body := bytes.NewBufferString(`{"theme":"dark","fontSize":40}`)
	rec = httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPut, "/api/v1/preferences", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	data = decodeBody(t, rec)["data"].(map[string]any)
	if data["theme"] != "dark" {
		t.Errorf("expected theme 'dark', got %v", data["theme"])
	}
	if data["fontSize"] != float64(14) {
		t.Errorf("expected out-of-range font size to fall back to 14, got %v", data["fontSize"])
	}
	if data["accent"] != "blue" {
		t.Errorf("expected untouched accent to stay 'blue', got %v", data["accent"])
	}
}

func TestPreferencesHandler_InvalidBody(t *testing.T) {
	h := handler.NewPreferencesHandler(preference.NewStore(storage.NewMemory(), time.Second))

	rec := httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPut, "/api/v1/preferences", bytes.NewBufferString("{")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPanelHandler_UnknownPanel(t *testing.T) {
	h := handler.NewPanelHandler(nil, nil)
	r := chi.NewRouter()
	r.Get("/panels/{panel}", h.Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panels/billing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
