package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("default header missing")
		}
		var in map[string]int
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]int{"double": in["n"] * 2})
	}))
	defer srv.Close()

	c := NewClient(time.Second, map[string]string{"X-Test": "yes"})
	var out map[string]int
	if err := c.PostJSON(context.Background(), srv.URL, map[string]int{"n": 21}, &out); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if out["double"] != 42 {
		t.Errorf("out = %v", out)
	}
}

func TestPostJSONStatus(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusForbidden, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"nope"}`, tt.status)
			}))
			defer srv.Close()

			err := NewClient(0, nil).PostJSON(context.Background(), srv.URL, struct{}{}, nil)
			var se *StatusError
			if !errors.As(err, &se) || se.Code != tt.status {
				t.Fatalf("error = %v, want StatusError %d", err, tt.status)
			}
			if se.Body != `{"error":"nope"}` {
				t.Errorf("Body = %q", se.Body)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
			if !errors.Is(err, ErrNetwork) {
				t.Error("status errors should wrap ErrNetwork")
			}
		})
	}
}

func TestPostJSONTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(time.Second, nil).PostJSON(context.Background(), url, struct{}{}, nil)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want retryable network error", err)
	}
}
