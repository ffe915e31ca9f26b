// README: API gateway; builds the gin engine and wraps it with CORS.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"farecalc/internal/http/middleware"
	"farecalc/internal/modules/fare"
	"farecalc/internal/modules/history"
	"farecalc/internal/modules/profile"
)

type ServerDeps struct {
	Fare     *fare.Service
	Profiles *profile.Service
	History  *history.Service
	Log      *zap.Logger

	AppName        string
	APIKey         string
	AllowedOrigins []string
	// TrustedProxies lists proxy CIDRs whose X-Forwarded-For is honoured; empty trusts none.
	TrustedProxies []string
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Server{deps: deps}
}

// Engine returns the gin engine with middleware and routes registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(s.deps.TrustedProxies); err != nil {
		s.deps.Log.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", s.deps.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.Recovery(s.deps.Log), middleware.Logging(s.deps.Log))
	registerRoutes(r, s.deps)
	return r
}

// Handler returns the full HTTP handler including CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", "X-Session-ID"},
	})
	return c.Handler(s.Engine())
}
