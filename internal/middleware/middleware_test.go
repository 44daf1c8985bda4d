package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/booking-flow/internal/infra/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	req.RemoteAddr = "10.0.0.1:1234"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(4, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/", nil).Code)
}

func TestSessionMiddleware(t *testing.T) {
	tokens := session.NewTokens("secret", time.Hour)
	token, err := tokens.Issue(session.Claims{
		SessionID:    session.NewSessionID(),
		BarbershopID: 3,
		Kind:         "public",
	})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", SessionMiddleware(tokens), func(c *gin.Context) {
		claims, ok := SessionFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"shop": claims.BarbershopID})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			w := serve(r, http.MethodGet, "/", h)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestOptionalSessionIgnoresBadToken(t *testing.T) {
	tokens := session.NewTokens("secret", time.Hour)

	r := gin.New()
	r.GET("/", OptionalSessionMiddleware(tokens), func(c *gin.Context) {
		_, ok := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"session": ok})
	})

	h := http.Header{}
	h.Set("Authorization", "Bearer garbage")
	w := serve(r, http.MethodGet, "/", h)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":false}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://agenda.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	h := http.Header{}
	h.Set("Origin", "https://agenda.example.com")
	w := serve(r, http.MethodGet, "/", h)
	assert.Equal(t, "https://agenda.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	h.Set("Origin", "https://other.example.com")
	w = serve(r, http.MethodGet, "/", h)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/", h)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
