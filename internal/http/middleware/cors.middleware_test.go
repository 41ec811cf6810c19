package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRequest(t *testing.T, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORSMiddleware())
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestCORSWildcardWhenUnconfigured(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")

	recorder := corsRequest(t, http.MethodGet, "http://localhost:3000")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSReflectsAllowedOrigin(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	recorder := corsRequest(t, http.MethodGet, "https://staging.example.com")

	assert.Equal(t, "https://staging.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSOmitsUnknownOrigin(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")

	recorder := corsRequest(t, http.MethodGet, "https://evil.example.com")

	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")

	recorder := corsRequest(t, http.MethodOptions, "http://localhost:3000")

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", recorder.Header().Get("Access-Control-Allow-Methods"))
}
