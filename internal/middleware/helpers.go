// internal/middleware/helpers.go
package middleware

import (
	"dossier-service/internal/domain/identity"

	"github.com/gin-gonic/gin"
)

// GetIdentity returns the acting identity set by Auth().
func GetIdentity(c *gin.Context) (identity.Identity, bool) {
	rawID, exists := c.Get("identity_id")
	if !exists {
		return identity.Identity{}, false
	}
	id, ok := rawID.(int64)
	if !ok {
		return identity.Identity{}, false
	}

	rawRole, exists := c.Get("role")
	if !exists {
		return identity.Identity{}, false
	}
	role, ok := rawRole.(identity.Role)
	if !ok {
		return identity.Identity{}, false
	}

	return identity.Identity{ID: id, Role: role}, true
}

// MustGetIdentity gets the acting identity from context or panics.
func MustGetIdentity(c *gin.Context) identity.Identity {
	actor, exists := GetIdentity(c)
	if !exists {
		panic("identity not found in context")
	}
	return actor
}
