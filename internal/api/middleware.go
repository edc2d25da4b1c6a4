package api

import (
	"errors"
	"strings"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/identity"
	"fittrack/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
)

// Context key for the verified identity set by RequireAuth.
const ContextIdentityKey = "identity"

// RequireAuth gates write endpoints: the request must carry a valid Bearer
// session token issued after the OAuth handshake. Failures point the caller
// at the login entry point via the 401 body.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondError(c, domain.UnauthenticatedError("authentication required for write operations"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			respondError(c, domain.UnauthenticatedError("authorization header format must be Bearer {token}"))
			return
		}

		ident, err := authService.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				respondError(c, domain.UnauthenticatedError("session token has expired"))
			} else {
				respondError(c, domain.UnauthenticatedError("invalid session token"))
			}
			return
		}

		c.Set(ContextIdentityKey, ident)
		c.Next()
	}
}

// identityFromContext returns the verified identity set by RequireAuth.
func identityFromContext(c *gin.Context) (*identity.Identity, error) {
	raw, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil, errors.New("identity not found in context")
	}
	ident, ok := raw.(*identity.Identity)
	if !ok {
		return nil, errors.New("invalid identity type in context")
	}
	return ident, nil
}

// RequestLogger emits one structured line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
