package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lokalo/lokalo-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
)

func newAuthTestRouter(t *testing.T, jwtManager *jwt.Manager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/private", JWTAuth(jwtManager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetUserID(c),
			"username": GetUsername(c),
			"role":     GetRole(c),
		})
	})
	router.GET("/public", OptionalJWTAuth(jwtManager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtManager := jwt.NewManager("test-secret-key-for-testing-only-32b!", 15, 1440)
	router := newAuthTestRouter(t, jwtManager)

	token, err := jwtManager.GenerateAccessToken(42, "tester", "USER")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
	assert.Contains(t, w.Body.String(), `"username":"tester"`)
}

func TestJWTAuth_Rejections(t *testing.T) {
	jwtManager := jwt.NewManager("test-secret-key-for-testing-only-32b!", 15, 1440)
	router := newAuthTestRouter(t, jwtManager)

	otherManager := jwt.NewManager("a-completely-different-secret-key!!!!", 15, 1440)
	foreign, err := otherManager.GenerateAccessToken(42, "tester", "USER")
	assert.NoError(t, err)

	refresh, err := jwtManager.GenerateRefreshToken(42)
	assert.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed token", "Bearer not-a-token"},
		{"wrong signature", "Bearer " + foreign},
		{"refresh token as bearer", "Bearer " + refresh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	// Tokens from this manager are already expired when issued
	jwtManager := jwt.NewManager("test-secret-key-for-testing-only-32b!", -1, -1)
	router := newAuthTestRouter(t, jwtManager)

	token, err := jwtManager.GenerateAccessToken(42, "tester", "USER")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestOptionalJWTAuth_AnonymousPasses(t *testing.T) {
	jwtManager := jwt.NewManager("test-secret-key-for-testing-only-32b!", 15, 1440)
	router := newAuthTestRouter(t, jwtManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)
}

func TestOptionalJWTAuth_ResolvesUser(t *testing.T) {
	jwtManager := jwt.NewManager("test-secret-key-for-testing-only-32b!", 15, 1440)
	router := newAuthTestRouter(t, jwtManager)

	token, err := jwtManager.GenerateAccessToken(7, "tester", "USER")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestOptionalJWTAuth_BadTokenStaysAnonymous(t *testing.T) {
	jwtManager := jwt.NewManager("test-secret-key-for-testing-only-32b!", 15, 1440)
	router := newAuthTestRouter(t, jwtManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)
}
