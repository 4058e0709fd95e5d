package workorder

import (
	"itad/domain/state"
	"itad/session"
)

// automaticActions are reached only as the outcome of another action, never offered to the operator.
var automaticActions = map[state.Action]bool{
	state.AwaitParts: true,
	state.PassQC:     true,
	state.FailQC:     true,
}

var supervisorActions = map[state.Action]bool{
	state.ApproveQuote: true,
	state.RejectQuote:  true,
	state.Finalize:     true,
}

// DeriveGating tells which phase of the work order page is editable.
// History is always read only.
func DeriveGating(wo *WorkOrder) Gating {
	g := Gating{Diagnosis: GateLocked, Repair: GateLocked, QC: GateLocked, History: GateReadonly}
	switch wo.Status {
	case state.Open, state.WaitingQuote:
		g.Diagnosis = GateActive
	case state.InProgress, state.WaitingParts, state.WaitingSeedstock:
		g.Diagnosis, g.Repair = GateCompleted, GateActive
	case state.QCPending:
		g.Diagnosis, g.Repair, g.QC = GateCompleted, GateCompleted, GateActive
	case state.QCFailed, state.QCPassed:
		g.Diagnosis, g.Repair, g.QC = GateCompleted, GateCompleted, GateCompleted
	case state.Completed:
		g.Diagnosis, g.Repair, g.QC = GateReadonly, GateReadonly, GateReadonly
	case state.ReadyToShip:
		// returned to the customer before any repair
		g.Diagnosis = GateReadonly
	}
	return g
}

// LegalNextActions lists what the holder of perms may do next on wo.
func LegalNextActions(wo *WorkOrder, perms session.Permissions) []state.Action {
	actions := []state.Action{}
	for _, a := range state.WorkOrderStateMachine.Actions(wo.Status) {
		if automaticActions[a] {
			continue
		}
		if supervisorActions[a] && !perms.HasRole(session.PermSupervisor) {
			continue
		}
		if a == state.RegisterSeedstock && wo.SeedstockExchange {
			continue
		}
		if (a == state.ApproveQuote || a == state.RejectQuote) && wo.QuoteStatus != QuotePending {
			continue
		}
		actions = append(actions, a)
	}
	return actions
}

func buildDetail(wo *WorkOrder, partRequests []PartRequest, perms session.Permissions) *WorkOrderDetail {
	if partRequests == nil {
		partRequests = []PartRequest{}
	}
	return &WorkOrderDetail{
		WorkOrder:        *wo,
		PartRequests:     partRequests,
		IntakeTests:      wo.MMITestIn.Matrix(),
		QCTests:          wo.MMITestOut.Matrix(),
		LegalNextActions: LegalNextActions(wo, perms),
		Gating:           DeriveGating(wo),
	}
}
