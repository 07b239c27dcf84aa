package handlers

import (
	"log"
	"net/http"

	"studybuddy/internal/config"
	"studybuddy/internal/models"
)

// BreakerReporter exposes the LLM circuit breaker state for health checks
type BreakerReporter interface {
	BreakerState() string
}

// HomeHandler serves the root and health endpoints
type HomeHandler struct {
	cfg     *config.Config
	breaker BreakerReporter
	logger  *log.Logger
}

// NewHomeHandler creates the root/health handler
func NewHomeHandler(cfg *config.Config, breaker BreakerReporter, logger *log.Logger) *HomeHandler {
	return &HomeHandler{cfg: cfg, breaker: breaker, logger: logger}
}

// Root handles the welcome endpoint
// @Summary API root
// @Description Welcome message with a pointer to the docs
// @Tags health
// @Produce json
// @Success 200 {object} models.RootResponse
// @Router / [get]
func (h *HomeHandler) Root(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, models.RootResponse{
		Message: "Welcome to " + h.cfg.AppName,
		Version: h.cfg.Version,
		Docs:    "/docs",
		Status:  "running",
	})
}

// Health reports service status
// @Summary Health check
// @Description Service liveness plus the LLM circuit breaker state
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	breakerState := "unavailable"
	if h.breaker != nil {
		breakerState = h.breaker.BreakerState()
	}
	sendJSON(w, h.logger, http.StatusOK, models.HealthResponse{
		Status:        "healthy",
		App:           h.cfg.AppName,
		Version:       h.cfg.Version,
		DebugMode:     h.cfg.Debug,
		VectorBackend: h.cfg.VectorBackend,
		LLMBreaker:    breakerState,
	})
}
