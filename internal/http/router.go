package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	chatH *ChatHandler,
	sessionH *SessionHandler,
	limiter RateLimiter,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api")
	api.POST("/chat", RateLimitMiddleware(limiter), chatH.Completion)
	api.POST("/image", chatH.GenerateImage)

	sessions := r.Group("/sessions")
	sessions.GET("", sessionH.List)
	sessions.GET("/search", sessionH.Search)
	sessions.POST("", sessionH.Create)
	sessions.POST("/:id/select", sessionH.Select)
	sessions.PUT("/:id/title", sessionH.Rename)
	sessions.DELETE("/:id", sessionH.Delete)
	sessions.POST("/:id/messages", sessionH.SendMessage)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
