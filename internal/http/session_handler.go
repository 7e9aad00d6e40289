package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmadsanny2/chat-ai/internal/chat"
	"github.com/ahmadsanny2/chat-ai/internal/llm"
)

// SessionHandler expone el ciclo de vida de sesiones sobre el controller.
type SessionHandler struct {
	logger *zap.Logger
	ctrl   *chat.Controller
}

func NewSessionHandler(logger *zap.Logger, ctrl *chat.Controller) *SessionHandler {
	return &SessionHandler{logger: logger, ctrl: ctrl}
}

// List maneja GET /sessions.
func (h *SessionHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions":  h.ctrl.Sessions(),
		"active_id": h.ctrl.ActiveID(),
	})
}

// Search maneja GET /sessions/search?q= con el filtro del sidebar.
func (h *SessionHandler) Search(c *gin.Context) {
	filtered := chat.Filter(h.ctrl.Sessions(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"sessions": filtered})
}

// Create maneja POST /sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	session, err := h.ctrl.Create(c.Request.Context())
	if err != nil {
		// La sesion quedo en memoria; el espejo durable fallo.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// Select maneja POST /sessions/:id/select.
func (h *SessionHandler) Select(c *gin.Context) {
	if err := h.ctrl.Select(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Rename maneja PUT /sessions/:id/title.
func (h *SessionHandler) Rename(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.ctrl.Rename(c.Request.Context(), c.Param("id"), req.Title); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete maneja DELETE /sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.ctrl.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_id": h.ctrl.ActiveID()})
}

// SendMessage maneja POST /sessions/:id/messages: corre un turno completo.
func (h *SessionHandler) SendMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	reply, err := h.ctrl.Submit(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message content is empty"})
		case errors.Is(err, chat.ErrUnknownSession):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, chat.ErrSessionBusy):
			c.JSON(http.StatusConflict, gin.H{"error": "session has a turn in flight"})
		case errors.Is(err, llm.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidMessages})
		default:
			h.logger.Error("turn failed", zap.Error(err), zap.String("session_id", c.Param("id")))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate response"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
