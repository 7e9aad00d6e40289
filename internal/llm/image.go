package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ImageGateway genera una imagen a partir de un prompt y devuelve su URL.
type ImageGateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIImageGateway implementa ImageGateway contra la API de imagenes.
type OpenAIImageGateway struct {
	client *openai.Client
}

func NewOpenAIImageGateway(baseURL, apiKey string) *OpenAIImageGateway {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIImageGateway{client: openai.NewClientWithConfig(cfg)}
}

func (g *OpenAIImageGateway) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrValidation)
	}

	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt: prompt,
		N:      1,
		Size:   openai.CreateImageSize512x512,
	})
	if err != nil {
		return "", classify(nil, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("%w: image url missing", ErrMalformedReply)
	}
	return resp.Data[0].URL, nil
}
