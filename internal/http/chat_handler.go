package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
	"github.com/ahmadsanny2/chat-ai/internal/llm"
)

// Mensajes estables del endpoint de completions.
const (
	errInvalidMessages = "Invalid or empty messages array."
	errInvalidContent  = "Invalid value for 'content': expected a string."
	errProviderFailed  = "Completion provider error."
	errImageNotFound   = "Image URL not found"
)

// ChatHandler expone el endpoint de completions y el proxy de imagenes.
type ChatHandler struct {
	logger  *zap.Logger
	gateway llm.Gateway
	images  llm.ImageGateway
}

func NewChatHandler(logger *zap.Logger, gateway llm.Gateway, images llm.ImageGateway) *ChatHandler {
	return &ChatHandler{logger: logger, gateway: gateway, images: images}
}

// Completion maneja POST /api/chat. El body se inspecciona como JSON crudo
// para detectar un content no-string en vez de coercionarlo.
func (h *ChatHandler) Completion(c *gin.Context) {
	var req struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidMessages})
		return
	}

	history := make([]domain.Message, 0, len(req.Messages))
	for _, raw := range req.Messages {
		var elem struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(raw, &elem); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidMessages})
			return
		}
		// Un null literal decodifica a "" sin error; tiene que rechazarse
		// igual que cualquier content no-string.
		if elem.Content == nil || string(elem.Content) == "null" {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidContent})
			return
		}
		var content string
		if json.Unmarshal(elem.Content, &content) != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidContent})
			return
		}
		history = append(history, domain.Message{Role: elem.Role, Content: content})
	}

	reply, err := h.gateway.Send(c.Request.Context(), history)
	if err != nil {
		if errors.Is(err, llm.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidMessages})
			return
		}
		h.logger.Error("completion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errProviderFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply.Content})
}

// GenerateImage maneja POST /api/image.
func (h *ChatHandler) GenerateImage(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid image request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	url, err := h.images.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("image generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errImageNotFound})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
