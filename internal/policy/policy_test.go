package policy

import (
	"database/sql"
	"testing"

	"dossier-service/internal/domain/dossier"
	"dossier-service/internal/domain/identity"
)

func nullID(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		role     identity.Role
		resource Resource
		op       Operation
		want     bool
	}{
		{"client cannot create dossiers", identity.RoleClient, ResourceDossier, OpCreate, false},
		{"client can read dossiers", identity.RoleClient, ResourceDossier, OpRead, true},
		{"client cannot update dossiers", identity.RoleClient, ResourceDossier, OpUpdate, false},
		{"client cannot read snapshots", identity.RoleClient, ResourceSnapshot, OpRead, false},
		{"phone agent can create dossiers", identity.RoleAgentPhone, ResourceDossier, OpCreate, true},
		{"phone agent cannot delete dossiers", identity.RoleAgentPhone, ResourceDossier, OpDelete, false},
		{"video agent can create appointments", identity.RoleAgentVideo, ResourceAppointment, OpCreate, true},
		{"video agent cannot delete appointments", identity.RoleAgentVideo, ResourceAppointment, OpDelete, false},
		{"agent cannot touch snapshots", identity.RoleAgentPhone, ResourceSnapshot, OpCreate, false},
		{"agent cannot reset counters", identity.RoleAgentPhone, ResourceCounters, OpReset, false},
		{"supervisor can delete dossiers", identity.RoleSupervisor, ResourceDossier, OpDelete, true},
		{"supervisor can delete appointments", identity.RoleSupervisor, ResourceAppointment, OpDelete, true},
		{"manager can manage snapshots", identity.RoleManager, ResourceSnapshot, OpUpdate, true},
		{"manager can reset counters", identity.RoleManager, ResourceCounters, OpReset, true},
		{"unknown role gets nothing", identity.Role("intruder"), ResourceDossier, OpRead, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.role, tc.resource, tc.op)
			if got.Allowed != tc.want {
				t.Fatalf("Evaluate(%s, %s, %s).Allowed = %v, want %v",
					tc.role, tc.resource, tc.op, got.Allowed, tc.want)
			}
		})
	}
}

func TestCanWrite(t *testing.T) {
	agentCap := Evaluate(identity.RoleAgentPhone, ResourceDossier, OpUpdate)
	if agentCap.CanWrite("amount") {
		t.Error("agent must not write amount")
	}
	if agentCap.CanWrite("client_ref") {
		t.Error("agent must not write client_ref")
	}
	if !agentCap.CanWrite("notes") {
		t.Error("agent should write notes")
	}
	if !agentCap.CanWrite("status") {
		t.Error("agent should write status")
	}

	supCap := Evaluate(identity.RoleSupervisor, ResourceDossier, OpUpdate)
	if !supCap.CanWrite("amount") || !supCap.CanWrite("client_ref") {
		t.Error("supervisor writes every field")
	}

	clientCap := Evaluate(identity.RoleClient, ResourceDossier, OpUpdate)
	if clientCap.CanWrite("notes") {
		t.Error("client has no dossier write capability at all")
	}
}

func TestVisibleDossier(t *testing.T) {
	d := &dossier.Dossier{
		ClientRef:     nullID(10),
		AgentPhoneRef: nullID(20),
		AgentVideoRef: nullID(30),
		Status:        dossier.StatusRdvEnCours,
	}
	archived := &dossier.Dossier{
		ClientRef:     nullID(10),
		AgentPhoneRef: nullID(20),
		AgentVideoRef: nullID(30),
		Status:        dossier.StatusArchive,
	}

	tests := []struct {
		name  string
		actor identity.Identity
		d     *dossier.Dossier
		want  bool
	}{
		{"owning client", identity.Identity{ID: 10, Role: identity.RoleClient}, d, true},
		{"other client", identity.Identity{ID: 11, Role: identity.RoleClient}, d, false},
		{"assigned phone agent", identity.Identity{ID: 20, Role: identity.RoleAgentPhone}, d, true},
		{"other phone agent", identity.Identity{ID: 21, Role: identity.RoleAgentPhone}, d, false},
		{"phone agent on wrong slot", identity.Identity{ID: 30, Role: identity.RoleAgentPhone}, d, false},
		{"assigned video agent", identity.Identity{ID: 30, Role: identity.RoleAgentVideo}, d, true},
		{"assigned phone agent, archived", identity.Identity{ID: 20, Role: identity.RoleAgentPhone}, archived, false},
		{"assigned video agent, archived", identity.Identity{ID: 30, Role: identity.RoleAgentVideo}, archived, false},
		{"client still sees archived", identity.Identity{ID: 10, Role: identity.RoleClient}, archived, true},
		{"supervisor sees everything", identity.Identity{ID: 99, Role: identity.RoleSupervisor}, archived, true},
		{"manager sees everything", identity.Identity{ID: 99, Role: identity.RoleManager}, d, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := VisibleDossier(tc.actor, tc.d); got != tc.want {
				t.Fatalf("VisibleDossier(%+v) = %v, want %v", tc.actor, got, tc.want)
			}
		})
	}
}

func TestCanReadCounters(t *testing.T) {
	agent := identity.Identity{ID: 5, Role: identity.RoleAgentPhone}
	if !CanReadCounters(agent, 5) {
		t.Error("agent reads own counters")
	}
	if CanReadCounters(agent, 6) {
		t.Error("agent must not read another agent's counters")
	}
	sup := identity.Identity{ID: 1, Role: identity.RoleSupervisor}
	if !CanReadCounters(sup, 6) {
		t.Error("supervisor reads any counters")
	}
	client := identity.Identity{ID: 5, Role: identity.RoleClient}
	if CanReadCounters(client, 5) {
		t.Error("client has no counters")
	}
}
