// README: Route fare calculation handler.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"farecalc/internal/messages"
	"farecalc/internal/modules/fare"
	"farecalc/internal/modules/pricing"
	"farecalc/internal/modules/profile"
)

// sessionHeader scopes latest-wins cancellation to one browser tab or client.
const sessionHeader = "X-Session-ID"

type FareHandler struct {
	messenger
	fare     *fare.Service
	profiles *profile.Service
}

func NewFareHandler(fareSvc *fare.Service, profiles *profile.Service, appName string) *FareHandler {
	return &FareHandler{messenger: messenger{appName: appName}, fare: fareSvc, profiles: profiles}
}

type calculateReq struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	// Settings, when present, are used as typed (unsaved) values.
	Settings *settingsBody `json:"settings"`
	// Profile picks a named profile when Settings is absent.
	Profile string `json:"profile"`
}

// Calculate handles POST /api/routes/calculate.
func (h *FareHandler) Calculate(c *gin.Context) {
	var req calculateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, http.StatusBadRequest, "invalid_json", messages.InvalidJSON)
		return
	}

	var in pricing.SettingsInput
	switch {
	case req.Settings != nil:
		in = req.Settings.input()
	case strings.TrimSpace(req.Profile) != "":
		p, err := h.profiles.Select(c.Request.Context(), req.Profile)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		in = pricing.InputFromProfile(p)
	default:
		st, err := h.profiles.Active(c.Request.Context())
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		in = pricing.InputFromProfile(st.FareProfile)
	}

	q, err := h.fare.Calculate(c.Request.Context(), fare.RouteRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Session:     sessionKey(c),
	}, in)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

// sessionKey falls back to the client IP, which only honours X-Forwarded-For from trusted proxies.
func sessionKey(c *gin.Context) string {
	if s := strings.TrimSpace(c.GetHeader(sessionHeader)); s != "" {
		return s
	}
	return c.ClientIP()
}
