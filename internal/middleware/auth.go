package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/booking-flow/internal/httperr"
	"github.com/BruksfildServices01/booking-flow/internal/infra/session"
)

const ContextSession = "bookingSession"

// SessionMiddleware requires a booking session token.
func SessionMiddleware(tokens *session.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Sessão de agendamento não informada.")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Sessão de agendamento inválida.")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			httperr.Unauthorized(c, "invalid_token", "Sessão de agendamento expirada.")
			c.Abort()
			return
		}

		c.Set(ContextSession, claims)
		c.Next()
	}
}

// OptionalSessionMiddleware reads a token when present and ignores a bad
// one, so entry endpoints can resume a session or start a new one.
func OptionalSessionMiddleware(tokens *session.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if claims, err := tokens.Parse(parts[1]); err == nil {
				c.Set(ContextSession, claims)
			}
		}
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (*session.Claims, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*session.Claims)
	return claims, ok
}
