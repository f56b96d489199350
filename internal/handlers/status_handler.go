package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/common"
	"github.com/ternarybob/fiiradar/internal/interfaces"
)

// StatusHandler serves process status information.
type StatusHandler struct {
	repository interfaces.FundRepository
	scheduler  interface{ IsRunning() bool }
	logger     arbor.ILogger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(repository interfaces.FundRepository, scheduler interface{ IsRunning() bool }, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		repository: repository,
		scheduler:  scheduler,
		logger:     logger,
	}
}

// StatusHandler handles GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	fundCount := -1
	if funds, err := h.repository.List(r.Context()); err == nil {
		fundCount = len(funds)
	} else {
		h.logger.Warn().Err(err).Msg("Status check could not count funds")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"version":           common.GetVersion(),
		"funds":             fundCount,
		"scheduler_running": h.scheduler.IsRunning(),
	})
}
