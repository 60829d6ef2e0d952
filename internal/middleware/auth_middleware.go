// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"dossier-service/internal/domain/identity"
	"dossier-service/internal/pkg/jwt"
	"dossier-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier *jwt.Verifier
}

func NewAuthMiddleware(verifier *jwt.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Auth validates the bearer token and attaches the acting identity to the
// request context. Authorization decisions stay with the policy evaluator;
// this middleware only answers "who is calling".
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		role, err := identity.ParseRole(claims.Role)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		c.Set("identity_id", claims.IdentityID)
		c.Set("role", role)

		c.Next()
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}
