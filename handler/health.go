package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HISASHIKUSANO/GeminiAPI01/pkg/logger"
)

// Pinger performs one live round-trip to the generative API.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version string
	pinger  Pinger
}

func NewHealthHandler(version string, pinger Pinger) *HealthHandler {
	return &HealthHandler{
		version: version,
		pinger:  pinger,
	}
}

// Root handles GET /: a static capability descriptor.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "QuickContract API へようこそ",
		"version": h.version,
		"docs":    "/docs",
	})
}

// Health handles GET /health by checking the Gemini API with a trivial
// prompt. Any fault maps to 503.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.pinger.Ping(c.Request.Context()); err != nil {
		logger.Error(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"detail": fmt.Sprintf("Service unavailable: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"gemini_api": "connected",
	})
}
