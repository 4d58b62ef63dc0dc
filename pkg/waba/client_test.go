package waba

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okanyedibela/waba-relay/environments"
)

func TestClient_SendText(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody SendTextRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("D360-API-KEY")

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.abc123"}]}`))
	}))
	defer server.Close()

	client := NewClient(environments.ProviderConfig{
		BaseURL: server.URL,
		APIKey:  "secret-key",
	})

	resp, err := client.SendText(context.Background(), "15551234567", "hello")
	if err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}

	if gotPath != "/v1/messages" {
		t.Errorf("expected path /v1/messages, got %q", gotPath)
	}
	if gotAPIKey != "secret-key" {
		t.Errorf("expected D360-API-KEY header, got %q", gotAPIKey)
	}

	if gotBody.MessagingProduct != "whatsapp" {
		t.Errorf("expected messaging_product whatsapp, got %q", gotBody.MessagingProduct)
	}
	if gotBody.RecipientType != "individual" {
		t.Errorf("expected recipient_type individual, got %q", gotBody.RecipientType)
	}
	if gotBody.To != "15551234567" {
		t.Errorf("expected to 15551234567, got %q", gotBody.To)
	}
	if gotBody.Type != "text" {
		t.Errorf("expected type text, got %q", gotBody.Type)
	}
	if gotBody.Text.Body != "hello" {
		t.Errorf("expected text body hello, got %q", gotBody.Text.Body)
	}

	if len(resp.Messages) != 1 || resp.Messages[0].ID != "wamid.abc123" {
		t.Errorf("expected provider id wamid.abc123, got %+v", resp.Messages)
	}
}

func TestClient_SendTextUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"provider exploded"}`))
	}))
	defer server.Close()

	client := NewClient(environments.ProviderConfig{
		BaseURL: server.URL,
		APIKey:  "secret-key",
	})

	_, err := client.SendText(context.Background(), "15551234567", "hello")
	if err == nil {
		t.Fatalf("expected error for upstream 500, got nil")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if provErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", provErr.StatusCode)
	}
}

func TestClient_SendTextTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(environments.ProviderConfig{
		BaseURL: server.URL,
		APIKey:  "secret-key",
	})

	_, err := client.SendText(context.Background(), "15551234567", "hello")
	if err == nil {
		t.Fatalf("expected error for unreachable provider, got nil")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if provErr.StatusCode != 0 {
		t.Errorf("expected status 0 for transport error, got %d", provErr.StatusCode)
	}
}

func TestClient_MarkRead(t *testing.T) {
	var gotBody MarkReadRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := NewClient(environments.ProviderConfig{
		BaseURL: server.URL,
		APIKey:  "secret-key",
	})

	if err := client.MarkRead(context.Background(), "wamid.in1"); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}

	if gotBody.Status != "read" {
		t.Errorf("expected status read, got %q", gotBody.Status)
	}
	if gotBody.MessageID != "wamid.in1" {
		t.Errorf("expected message id wamid.in1, got %q", gotBody.MessageID)
	}
}
