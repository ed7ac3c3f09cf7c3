package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"tracker/internal/services"
	"tracker/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// SessionName is the cookie that carries the signed gin session.
	SessionName = "tracker_session"
	// TokenKey is where the login token lives inside the cookie session.
	TokenKey = "token"

	principalKey = "principal"
)

// Token returns the caller's login token, from an Authorization bearer
// header or else from the cookie session.
func Token(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	if token, ok := sessions.Default(c).Get(TokenKey).(string); ok {
		return token
	}
	return ""
}

// Principal returns the identity AuthRequired attached to the request.
func Principal(c *gin.Context) (session.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return session.Principal{}, false
	}
	p, ok := v.(session.Principal)
	return p, ok
}

// ClientContext puts an anonymous Actor with the caller's address on the
// request context so audit entries of public routes still say who called.
func ClientContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := services.WithActor(c.Request.Context(), services.Actor{
			IP:        ClientIP(c),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthRequired rejects requests without a live session token.
func AuthRequired(registry *session.Registry, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok, err := registry.Validate(c.Request.Context(), Token(c))
		if err != nil {
			logger.Error("Session lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
				"code":  services.KindInternal,
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": services.ErrUnauthorized.Message,
				"code":  services.KindUnauthorized,
			})
			return
		}

		c.Set(principalKey, p)
		ctx := services.WithActor(c.Request.Context(), services.Actor{
			UserID:    p.UserID,
			Username:  p.Username,
			IP:        ClientIP(c),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
