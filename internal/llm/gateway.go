package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

// Clasificacion de fallos del gateway, para que el caller decida reintentar
// o mostrar al usuario. No se reintenta internamente.
var (
	ErrValidation     = errors.New("completion request invalid")
	ErrTransport      = errors.New("completion transport failure")
	ErrUpstream       = errors.New("completion upstream failure")
	ErrMalformedReply = errors.New("completion reply malformed")
)

// Gateway produce el siguiente mensaje assistant dado el historial completo.
type Gateway interface {
	Send(ctx context.Context, history []domain.Message) (domain.Message, error)
}

// OpenAIGateway implementa Gateway contra una API chat-completions compatible.
type OpenAIGateway struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIGateway construye el cliente apuntando a la API configurada.
func NewOpenAIGateway(baseURL, apiKey, model string, logger *zap.Logger) *OpenAIGateway {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &OpenAIGateway{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Send envia el historial completo tal cual, sin ventana ni resumen.
func (g *OpenAIGateway) Send(ctx context.Context, history []domain.Message) (domain.Message, error) {
	if err := ValidateHistory(history); err != nil {
		return domain.Message{}, err
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: msgs,
	})
	if err != nil {
		return domain.Message{}, classify(g.logger, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return domain.Message{}, fmt.Errorf("%w: empty choices", ErrMalformedReply)
	}

	return domain.Message{
		Role:    domain.RoleAssistant,
		Content: resp.Choices[0].Message.Content,
	}, nil
}

func classify(logger *zap.Logger, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if logger != nil {
			logger.Warn("completion upstream error",
				zap.Int("status", apiErr.HTTPStatusCode),
				zap.String("message", apiErr.Message),
			)
		}
		return fmt.Errorf("%w: status=%d: %s", ErrUpstream, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: status=%d", ErrUpstream, reqErr.HTTPStatusCode)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// ValidateHistory rechaza historiales malformados antes de tocar la red.
func ValidateHistory(history []domain.Message) error {
	if len(history) == 0 {
		return fmt.Errorf("%w: empty history", ErrValidation)
	}
	for i, m := range history {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			return fmt.Errorf("%w: message %d has role %q", ErrValidation, i, m.Role)
		}
		if m.Content == "" {
			return fmt.Errorf("%w: message %d has empty content", ErrValidation, i)
		}
	}
	return nil
}
