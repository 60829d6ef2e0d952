// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the opaque acting identity stamped on tokens by the
// (external) authentication service. This service only verifies; it never
// issues tokens.
type Claims struct {
	IdentityID int64  `json:"identity_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}
