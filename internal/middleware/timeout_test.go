// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeoutPassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); !ok {
			t.Error("request context has no deadline")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	rr := httptest.NewRecorder()
	Timeout(5*time.Second)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("handler header lost: Content-Type = %q", ct)
	}
	if body := rr.Body.String(); body != `{"success":true}` {
		t.Errorf("Body = %q", body)
	}
}

func TestTimeoutExpired(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", "slow")
		select {
		case <-time.After(5 * time.Second):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	})

	rr := httptest.NewRecorder()
	Timeout(50*time.Millisecond)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if got := rr.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if got := rr.Header().Get("X-Handler"); got != "" {
		t.Errorf("uncommitted handler header leaked: %q", got)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["success"] != false || body["error"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestTimeoutKeepsStartedResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		<-r.Context().Done()
		_, _ = w.Write([]byte("partial"))
	})

	rr := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusAccepted {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusAccepted)
	}
	if rr.Body.String() != "partial" {
		t.Errorf("Body = %q, want handler output", rr.Body.String())
	}
}

func TestTimeoutWriterAfterExpiry(t *testing.T) {
	rr := httptest.NewRecorder()
	tw := &timeoutWriter{w: rr, header: make(http.Header)}

	if !tw.expire() {
		t.Fatal("expire() = false on an unused writer")
	}
	tw.Header().Set("X-Late", "1")
	tw.WriteHeader(http.StatusTeapot)
	if _, err := tw.Write([]byte("late")); !errors.Is(err, http.ErrHandlerTimeout) {
		t.Errorf("Write() error = %v, want ErrHandlerTimeout", err)
	}
	if rr.Code != http.StatusOK || rr.Body.Len() != 0 || rr.Header().Get("X-Late") != "" {
		t.Errorf("late output reached the client: %d %q %v", rr.Code, rr.Body.String(), rr.Header())
	}
}

func TestTimeoutWriterImplicitStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	tw := &timeoutWriter{w: rr, header: make(http.Header)}

	_, _ = tw.Write([]byte("body"))
	tw.WriteHeader(http.StatusInternalServerError)

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200 from the implicit header", rr.Code)
	}
	if tw.expire() {
		t.Error("expire() = true after the response started")
	}
}
