// internal/domain/identity/identity.go
package identity

import "fmt"

// Role is the single role attached to an acting user by the auth layer.
type Role string

const (
	RoleClient     Role = "client"
	RoleAgentPhone Role = "agent_phone"
	RoleAgentVideo Role = "agent_video"
	RoleSupervisor Role = "supervisor"
	RoleManager    Role = "manager"
)

// ParseRole validates a raw role string coming off a token.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleAgentPhone, RoleAgentVideo, RoleSupervisor, RoleManager:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsAgent reports whether the role is one of the two agent roles.
func (r Role) IsAgent() bool {
	return r == RoleAgentPhone || r == RoleAgentVideo
}

// IsSupervisory reports whether the role sees and manages everything.
func (r Role) IsSupervisory() bool {
	return r == RoleSupervisor || r == RoleManager
}

// Identity is the opaque acting user attached to every inbound request.
type Identity struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}
