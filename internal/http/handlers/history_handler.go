// README: Ride history handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farecalc/internal/modules/history"
)

type HistoryHandler struct {
	messenger
	history *history.Service
}

func NewHistoryHandler(svc *history.Service, appName string) *HistoryHandler {
	return &HistoryHandler{messenger: messenger{appName: appName}, history: svc}
}

func (h *HistoryHandler) List(c *gin.Context) {
	entries, err := h.history.List(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"history": entries})
}

func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context()); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
