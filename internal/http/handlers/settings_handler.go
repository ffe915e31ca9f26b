// README: Settings and profile handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farecalc/internal/messages"
	"farecalc/internal/modules/profile"
)

type SettingsHandler struct {
	messenger
	profiles *profile.Service
}

func NewSettingsHandler(profiles *profile.Service, appName string) *SettingsHandler {
	return &SettingsHandler{messenger: messenger{appName: appName}, profiles: profiles}
}

// Get handles GET /api/settings. Falls back to the default profile until something is saved.
func (h *SettingsHandler) Get(c *gin.Context) {
	st, saved, err := h.profiles.Settings(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !saved {
		if st, err = h.profiles.Active(c.Request.Context()); err != nil {
			h.writeServiceError(c, err)
			return
		}
	}
	writeJSON(c, http.StatusOK, gin.H{"settings": st, "saved": saved})
}

// Save handles PUT /api/settings.
func (h *SettingsHandler) Save(c *gin.Context) {
	var body settingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, http.StatusBadRequest, "invalid_json", messages.InvalidJSON)
		return
	}
	st, err := h.profiles.SaveSettings(c.Request.Context(), body.input())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"settings": st, "message": h.text(messages.ConfigSaved)})
}

// ListProfiles handles GET /api/profiles.
func (h *SettingsHandler) ListProfiles(c *gin.Context) {
	all, err := h.profiles.List(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"profiles": all})
}

// SaveProfile handles PUT /api/profiles/:name.
func (h *SettingsHandler) SaveProfile(c *gin.Context) {
	var body settingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, http.StatusBadRequest, "invalid_json", messages.InvalidJSON)
		return
	}
	name := c.Param("name")
	p, err := h.profiles.SaveProfile(c.Request.Context(), name, body.input())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"name": name, "profile": p})
}

// SelectProfile handles POST /api/profiles/:name/select.
func (h *SettingsHandler) SelectProfile(c *gin.Context) {
	st, err := h.profiles.Apply(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"settings": st})
}
