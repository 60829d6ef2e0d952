// internal/policy/policy.go
//
// Package policy is the single authorization authority. It is a pure
// function of (role, resource, operation) plus ownership facts, with no
// storage dependencies, so every mutation path evaluates the same table
// instead of repeating role checks at call sites.
package policy

import (
	"dossier-service/internal/domain/dossier"
	"dossier-service/internal/domain/identity"
)

type Resource string

const (
	ResourceDossier     Resource = "dossier"
	ResourceAppointment Resource = "appointment"
	ResourceSnapshot    Resource = "snapshot"
	ResourceCounters    Resource = "counters"
)

type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpReset  Operation = "reset"
)

// Capability is the evaluator's verdict for one (role, resource, operation)
// cell. WritableFields limits an update patch; nil means every field.
type Capability struct {
	Allowed        bool
	WritableFields map[string]bool
}

// CanWrite reports whether the capability permits writing the named field.
func (cap Capability) CanWrite(field string) bool {
	if !cap.Allowed {
		return false
	}
	if cap.WritableFields == nil {
		return true
	}
	return cap.WritableFields[field]
}

// Dossier fields agents may patch. Amount and client assignment stay
// supervisory-only.
var agentDossierFields = map[string]bool{
	"agent_phone_ref": true,
	"agent_video_ref": true,
	"notes":           true,
	"status":          true,
	"offer_refs":      true,
}

var grants = map[identity.Role]map[Resource]map[Operation]Capability{
	identity.RoleClient: {
		ResourceDossier: {
			OpRead: {Allowed: true},
		},
		ResourceAppointment: {
			OpRead: {Allowed: true},
		},
	},
	identity.RoleAgentPhone: {
		ResourceDossier: {
			OpCreate: {Allowed: true},
			OpRead:   {Allowed: true},
			OpUpdate: {Allowed: true, WritableFields: agentDossierFields},
		},
		ResourceAppointment: {
			OpCreate: {Allowed: true},
			OpRead:   {Allowed: true},
			OpUpdate: {Allowed: true},
		},
		ResourceCounters: {
			OpRead:   {Allowed: true},
			OpUpdate: {Allowed: true},
		},
	},
	identity.RoleAgentVideo: {
		ResourceDossier: {
			OpCreate: {Allowed: true},
			OpRead:   {Allowed: true},
			OpUpdate: {Allowed: true, WritableFields: agentDossierFields},
		},
		ResourceAppointment: {
			OpCreate: {Allowed: true},
			OpRead:   {Allowed: true},
			OpUpdate: {Allowed: true},
		},
		ResourceCounters: {
			OpRead:   {Allowed: true},
			OpUpdate: {Allowed: true},
		},
	},
	identity.RoleSupervisor: supervisoryGrants,
	identity.RoleManager:    supervisoryGrants,
}

var supervisoryGrants = map[Resource]map[Operation]Capability{
	ResourceDossier: {
		OpCreate: {Allowed: true},
		OpRead:   {Allowed: true},
		OpUpdate: {Allowed: true},
		OpDelete: {Allowed: true},
	},
	ResourceAppointment: {
		OpCreate: {Allowed: true},
		OpRead:   {Allowed: true},
		OpUpdate: {Allowed: true},
		OpDelete: {Allowed: true},
	},
	ResourceSnapshot: {
		OpCreate: {Allowed: true},
		OpRead:   {Allowed: true},
		OpUpdate: {Allowed: true},
		OpDelete: {Allowed: true},
	},
	ResourceCounters: {
		OpRead:   {Allowed: true},
		OpUpdate: {Allowed: true},
		OpReset:  {Allowed: true},
	},
}

// Evaluate looks up the capability for a role acting on a resource.
func Evaluate(role identity.Role, resource Resource, op Operation) Capability {
	byResource, ok := grants[role]
	if !ok {
		return Capability{}
	}
	byOp, ok := byResource[resource]
	if !ok {
		return Capability{}
	}
	return byOp[op]
}

// VisibleDossier applies the visibility rules: clients see their own
// dossiers, agents see dossiers where they are the matching assigned agent
// except archived ones, supervisory roles see everything.
func VisibleDossier(actor identity.Identity, d *dossier.Dossier) bool {
	switch actor.Role {
	case identity.RoleClient:
		return d.ClientRef.Valid && d.ClientRef.Int64 == actor.ID
	case identity.RoleAgentPhone:
		return d.AgentPhoneRef.Valid && d.AgentPhoneRef.Int64 == actor.ID &&
			d.Status != dossier.StatusArchive
	case identity.RoleAgentVideo:
		return d.AgentVideoRef.Valid && d.AgentVideoRef.Int64 == actor.ID &&
			d.Status != dossier.StatusArchive
	case identity.RoleSupervisor, identity.RoleManager:
		return true
	}
	return false
}

// CanReadCounters reports whether the actor may read the given agent's
// counters. Agents read their own, supervisory roles read anybody's.
func CanReadCounters(actor identity.Identity, agentID int64) bool {
	if actor.Role.IsSupervisory() {
		return Evaluate(actor.Role, ResourceCounters, OpRead).Allowed
	}
	return actor.ID == agentID && Evaluate(actor.Role, ResourceCounters, OpRead).Allowed
}
