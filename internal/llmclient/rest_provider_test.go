package llmclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestRESTProviderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		w.Write([]byte(`{"data":{"text":"use ls -a"}}`))
	}))
	defer server.Close()

	provider, err := NewRESTProvider(server.URL, "1.0.0", TLSConfig{VerifySSL: true}, ProxyConfig{})
	if err != nil {
		t.Fatalf("NewRESTProvider: %v", err)
	}

	text, err := provider.Submit(context.Background(), Payload{Question: "how do I list hidden files?"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if text != "use ls -a" {
		t.Errorf("Submit returned %q, want %q", text, "use ls -a")
	}
}

func TestRESTProviderRetriesOn503ThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"text":"ok"}}`))
	}))
	defer server.Close()

	provider, err := NewRESTProvider(server.URL, "1.0.0", TLSConfig{VerifySSL: true}, ProxyConfig{})
	if err != nil {
		t.Fatalf("NewRESTProvider: %v", err)
	}

	text, err := provider.Submit(context.Background(), Payload{Question: "q"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if text != "ok" {
		t.Errorf("Submit returned %q, want %q", text, "ok")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRESTProviderGivesUpAfterThreeAttempts(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider, err := NewRESTProvider(server.URL, "1.0.0", TLSConfig{VerifySSL: true}, ProxyConfig{})
	if err != nil {
		t.Fatalf("NewRESTProvider: %v", err)
	}

	if _, err := provider.Submit(context.Background(), Payload{Question: "q"}); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (1 initial + 2 retries)", attempts)
	}
}

func TestRESTProviderDoesNotRetryOn500(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider, err := NewRESTProvider(server.URL, "1.0.0", TLSConfig{VerifySSL: true}, ProxyConfig{})
	if err != nil {
		t.Fatalf("NewRESTProvider: %v", err)
	}

	if _, err := provider.Submit(context.Background(), Payload{Question: "q"}); err == nil {
		t.Fatal("expected an error for a non-retryable status")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (500 is not in the retry set)", attempts)
	}
}

func TestRESTProviderEmptyTextFieldIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	provider, err := NewRESTProvider(server.URL, "1.0.0", TLSConfig{VerifySSL: true}, ProxyConfig{})
	if err != nil {
		t.Fatalf("NewRESTProvider: %v", err)
	}

	text, err := provider.Submit(context.Background(), Payload{Question: "q"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if text != "" {
		t.Errorf("Submit returned %q, want empty string", text)
	}
}
