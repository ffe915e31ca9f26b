package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"farecalc/internal/http/middleware"
)

func newTestRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.APIKey(key))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAPIKey(t *testing.T) {
	cases := []struct {
		name   string
		key    string
		method string
		header map[string]string
		want   int
	}{
		{"disabled", "", http.MethodPut, nil, http.StatusOK},
		{"read without key", "s3cret", http.MethodGet, nil, http.StatusOK},
		{"write without key", "s3cret", http.MethodPut, nil, http.StatusUnauthorized},
		{"write wrong key", "s3cret", http.MethodPut, map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"write header key", "s3cret", http.MethodPut, map[string]string{"X-API-Key": "s3cret"}, http.StatusOK},
		{"write bearer key", "s3cret", http.MethodPut, map[string]string{"Authorization": "Bearer s3cret"}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(tc.key)
			req := httptest.NewRequest(tc.method, "/test", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
