package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-inventory-service/config"
)

const testSecret = "inventory-test-secret"

func testConfig(domains string) *config.EnvConfig {
	cfg := &config.EnvConfig{}
	cfg.JWT.SecretKey = testSecret
	cfg.CORS.AllowDomains = domains
	return cfg
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(nil, testConfig("")))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString("user_id"),
			"permission": c.GetString("permission"),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.NewString()
	valid := signToken(t, testSecret, jwt.MapClaims{
		"user_id":    userID,
		"permission": "editor",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name    string
		prepare func(req *http.Request)
		code    int
	}{
		{"missing token", func(req *http.Request) {}, http.StatusUnauthorized},
		{"bearer header", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+valid)
		}, http.StatusOK},
		{"cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: valid})
		}, http.StatusOK},
		{"query parameter", func(req *http.Request) {
			q := req.URL.Query()
			q.Set("access_token", valid)
			req.URL.RawQuery = q.Encode()
		}, http.StatusOK},
		{"wrong secret", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, "other", jwt.MapClaims{"user_id": userID}))
		}, http.StatusUnauthorized},
		{"expired", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{
				"user_id": userID,
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}))
		}, http.StatusUnauthorized},
		{"user id is not a uuid", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"user_id": "42"}))
		}, http.StatusUnauthorized},
	}

	r := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.JSONEq(t, `{"user_id":"`+userID+`","permission":"editor"}`, w.Body.String())
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	assert.Nil(t, allowedOrigins(""))
	assert.Equal(t,
		[]string{"https://inventario.example.com", "http://localhost:3000"},
		allowedOrigins(" inventario.example.com/ , http://localhost:3000,,"),
	)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(testConfig("https://inventario.example.com")))
	r.POST("/graphql", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://inventario.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://inventario.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight("https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
