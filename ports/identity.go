package ports

import "agora/domain/core"

// Role classifies the caller of a submission
type Role string

const (
	RoleAgent Role = "agent"
	RoleHuman Role = "human"
	RoleAdmin Role = "admin"
)

// Identity is the opaque caller context supplied by the auth collaborator.
// The core only consumes it, it never authenticates.
type Identity struct {
	ActorID core.ID
	Role    Role
	Banned  bool
}

// AgentID views the actor as an agent identifier
func (i Identity) AgentID() core.AgentID {
	return core.AgentID(i.ActorID)
}

// IsAdmin reports whether the caller holds the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
