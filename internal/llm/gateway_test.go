package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

func validHistory() []domain.Message {
	return []domain.Message{{Role: domain.RoleUser, Content: "Hola"}}
}

func TestValidateHistory(t *testing.T) {
	cases := []struct {
		name    string
		history []domain.Message
	}{
		{"empty history", nil},
		{"unknown role", []domain.Message{{Role: "system", Content: "x"}}},
		{"empty content", []domain.Message{{Role: domain.RoleUser, Content: ""}}},
	}
	for _, c := range cases {
		if err := ValidateHistory(c.history); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", c.name, err)
		}
	}

	ok := []domain.Message{
		{Role: domain.RoleUser, Content: "Hola"},
		{Role: domain.RoleAssistant, Content: "Hola!"},
	}
	if err := ValidateHistory(ok); err != nil {
		t.Fatalf("expected valid history, got %v", err)
	}
}

func TestSendValidationNeverReachesNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := NewOpenAIGateway(srv.URL, "test-key", "test-model", zap.NewNop())
	if _, err := g.Send(context.Background(), nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if called {
		t.Fatalf("validation failure must not reach the provider")
	}
}

func TestSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []domain.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		// El historial viaja completo y en orden.
		if len(req.Messages) != 3 || req.Messages[2].Content != "y ahora?" {
			t.Errorf("unexpected history %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Hi there"}},
			},
		})
	}))
	defer srv.Close()

	g := NewOpenAIGateway(srv.URL, "test-key", "test-model", zap.NewNop())
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "Hola"},
		{Role: domain.RoleAssistant, Content: "Hola!"},
		{Role: domain.RoleUser, Content: "y ahora?"},
	}
	reply, err := g.Send(context.Background(), history)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Role != domain.RoleAssistant || reply.Content != "Hi there" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestSendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "boom", "type": "server_error"},
		})
	}))
	defer srv.Close()

	g := NewOpenAIGateway(srv.URL, "test-key", "test-model", zap.NewNop())
	_, err := g.Send(context.Background(), validHistory())
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestSendMalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	g := NewOpenAIGateway(srv.URL, "test-key", "test-model", zap.NewNop())
	_, err := g.Send(context.Background(), validHistory())
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply, got %v", err)
	}
}

func TestSendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := NewOpenAIGateway(srv.URL, "test-key", "test-model", zap.NewNop())
	_, err := g.Send(context.Background(), validHistory())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestImageGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"url": "https://img.example/1.png"}},
		})
	}))
	defer srv.Close()

	g := NewOpenAIImageGateway(srv.URL, "test-key")
	url, err := g.Generate(context.Background(), "un gato")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if url != "https://img.example/1.png" {
		t.Fatalf("unexpected url %q", url)
	}

	if _, err := g.Generate(context.Background(), "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty prompt, got %v", err)
	}
}
