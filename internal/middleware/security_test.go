package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newSecurityTestRouter(maxBody int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeaders())
	router.Use(InputSanitizer(maxBody))

	router.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"q": c.Query("q")})
	})
	router.POST("/probe", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bytes": len(body)})
	})
	return router
}

func TestSecurityHeaders_Set(t *testing.T) {
	router := newSecurityTestRouter(0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	// No TLS in the test request, so no HSTS
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestInputSanitizer_NullByteInQuery(t *testing.T) {
	router := newSecurityTestRouter(0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe?q=abc%00def", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid characters")
}

func TestInputSanitizer_CleanQueryPasses(t *testing.T) {
	router := newSecurityTestRouter(0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe?q=hello", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"q":"hello"`)
}

func TestInputSanitizer_BodyCap(t *testing.T) {
	router := newSecurityTestRouter(16)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(strings.Repeat("x", 64)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader("tiny"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bytes":4`)
}
