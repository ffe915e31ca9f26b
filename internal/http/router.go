// README: HTTP route registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"farecalc/internal/http/handlers"
	"farecalc/internal/http/middleware"
	"farecalc/internal/metrics"
)

func registerRoutes(r *gin.Engine, deps ServerDeps) {
	api := r.Group("/api", middleware.APIKey(deps.APIKey))

	fareHandler := handlers.NewFareHandler(deps.Fare, deps.Profiles, deps.AppName)
	// X-Session-ID scopes latest-wins cancellation; without it the client IP is the
	// session, so clients sharing an address supersede each other.
	api.POST("/routes/calculate", fareHandler.Calculate)

	settingsHandler := handlers.NewSettingsHandler(deps.Profiles, deps.AppName)
	api.GET("/settings", settingsHandler.Get)
	api.PUT("/settings", settingsHandler.Save)
	api.GET("/profiles", settingsHandler.ListProfiles)
	api.PUT("/profiles/:name", settingsHandler.SaveProfile)
	api.POST("/profiles/:name/select", settingsHandler.SelectProfile)

	historyHandler := handlers.NewHistoryHandler(deps.History, deps.AppName)
	api.GET("/history", historyHandler.List)
	api.DELETE("/history", historyHandler.Clear)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	metrics.RegisterDefault()
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}
