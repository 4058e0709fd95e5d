package state

import (
	"database/sql/driver"
	"fmt"
)

// Status is the phase of a work order.
type Status string

const (
	Open             Status = "open"
	WaitingQuote     Status = "waiting_quote"
	InProgress       Status = "in_progress"
	WaitingParts     Status = "waiting_parts"
	WaitingSeedstock Status = "waiting_seedstock"
	QCPending        Status = "qc_pending"
	QCFailed         Status = "qc_failed"
	QCPassed         Status = "qc_passed"
	Completed        Status = "completed"
	ReadyToShip      Status = "ready_to_ship"
)

var AllStatuses = []Status{Open, WaitingQuote, InProgress, WaitingParts, WaitingSeedstock,
	QCPending, QCFailed, QCPassed, Completed, ReadyToShip}

type Category uint

const (
	Diagnosing Category = iota
	Repairing
	Inspecting
	Closed
)

type Phase string

const (
	PhaseDiagnosis Phase = "diagnosis"
	PhaseRepair    Phase = "repair"
	PhaseQC        Phase = "qc"
	PhaseClosed    Phase = "closed"
)

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status '%s'", s)
	}
	return status, nil
}

func (s Status) Valid() bool {
	switch s {
	case Open, WaitingQuote, InProgress, WaitingParts, WaitingSeedstock, QCPending, QCFailed, QCPassed, Completed, ReadyToShip:
		return true
	}
	return false
}

func (s Status) Phase() Phase {
	switch s {
	case Open, WaitingQuote:
		return PhaseDiagnosis
	case InProgress, WaitingParts, WaitingSeedstock:
		return PhaseRepair
	case QCPending, QCFailed, QCPassed:
		return PhaseQC
	case Completed, ReadyToShip:
		return PhaseClosed
	}
	panic(fmt.Sprintf("unknown status '%s'", string(s)))
}

func (s Status) Category() Category {
	switch s.Phase() {
	case PhaseDiagnosis:
		return Diagnosing
	case PhaseRepair:
		return Repairing
	case PhaseQC:
		return Inspecting
	default:
		return Closed
	}
}

func (s Status) Terminal() bool {
	return s == Completed || s == ReadyToShip
}

// Value rejects unknown statuses so they never reach the database.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown status '%s'", string(s))
	}
	return string(s), nil
}

func (s *Status) Scan(v interface{}) error {
	var raw string
	switch value := v.(type) {
	case string:
		raw = value
	case []byte:
		raw = string(value)
	default:
		return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
	}
	status, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Action is an operator action on a work order.
type Action string

const (
	ClassifyWarranty Action = "classify_warranty"
	SendQuote        Action = "send_quote"
	ApproveQuote     Action = "approve_quote"
	RejectQuote      Action = "reject_quote"
	MarkIrreparable  Action = "mark_irreparable"
	SetIntakeTest    Action = "set_intake_test"
	AssignTechnician Action = "assign_technician"

	RequestPart       Action = "request_part"
	DispatchPart      Action = "dispatch_part"
	AwaitParts        Action = "await_parts"
	AwaitSeedstock    Action = "await_seedstock"
	RegisterSeedstock Action = "register_seedstock"
	CompleteRepair    Action = "complete_repair"

	SetQCTest      Action = "set_qc_test"
	ResetQCTest    Action = "reset_qc_test"
	SaveQC         Action = "save_qc"
	PassQC         Action = "pass_qc"
	FailQC         Action = "fail_qc"
	ReturnToRepair Action = "return_to_repair"
	Finalize       Action = "finalize"
)

type Transition struct {
	Action Action `json:"action"`
	From   Status `json:"from"`
	To     Status `json:"to"`
}

// StateMachine is stateless, it only answers which moves a status permits.
type StateMachine struct {
	States      []Status     `json:"states"`
	Transitions []Transition `json:"transitions"`
	// Activities are actions which mutate a work order without moving its status.
	Activities map[Status][]Action `json:"activities"`
}

func NewStateMachine(states []Status, transitions []Transition, activities map[Status][]Action) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions, Activities: activities}
}

// WorkOrderStateMachine is the one-way repair pipeline.
var WorkOrderStateMachine = NewStateMachine(AllStatuses,
	[]Transition{
		{Action: ClassifyWarranty, From: Open, To: InProgress},
		{Action: SendQuote, From: Open, To: WaitingQuote},
		{Action: MarkIrreparable, From: Open, To: ReadyToShip},
		{Action: ApproveQuote, From: WaitingQuote, To: InProgress},
		{Action: RejectQuote, From: WaitingQuote, To: ReadyToShip},
		{Action: AwaitParts, From: InProgress, To: WaitingParts},
		{Action: AwaitSeedstock, From: InProgress, To: WaitingSeedstock},
		{Action: CompleteRepair, From: InProgress, To: QCPending},
		{Action: CompleteRepair, From: WaitingParts, To: QCPending},
		{Action: CompleteRepair, From: WaitingSeedstock, To: QCPending},
		{Action: PassQC, From: QCPending, To: QCPassed},
		{Action: FailQC, From: QCPending, To: QCFailed},
		{Action: ReturnToRepair, From: QCFailed, To: InProgress},
		{Action: Finalize, From: QCPassed, To: Completed},
	},
	map[Status][]Action{
		Open:             {ClassifyWarranty, SetIntakeTest, AssignTechnician},
		WaitingQuote:     {AssignTechnician},
		InProgress:       {RequestPart, DispatchPart, RegisterSeedstock, AssignTechnician},
		WaitingParts:     {RequestPart, DispatchPart, RegisterSeedstock, AssignTechnician},
		WaitingSeedstock: {RequestPart, DispatchPart, RegisterSeedstock, AssignTechnician},
		QCPending:        {SetQCTest, ResetQCTest, SaveQC, AssignTechnician},
		QCFailed:         {AssignTechnician},
		QCPassed:         {AssignTechnician},
	})

func (sm *StateMachine) AvailableTransitions(from Status) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if transition.From == from {
			r = append(r, transition)
		}
	}
	return r
}

// Next returns the status reached by firing action from status.
func (sm *StateMachine) Next(from Status, action Action) (Status, bool) {
	for _, transition := range sm.Transitions {
		if transition.From == from && transition.Action == action {
			return transition.To, true
		}
	}
	return "", false
}

// Permits reports whether action is legal in status, either as a transition or as an in-place activity.
func (sm *StateMachine) Permits(status Status, action Action) bool {
	if _, ok := sm.Next(status, action); ok {
		return true
	}
	for _, a := range sm.Activities[status] {
		if a == action {
			return true
		}
	}
	return false
}

// Actions lists every action permitted in status without duplicates, transitions first.
func (sm *StateMachine) Actions(status Status) []Action {
	seen := map[Action]bool{}
	actions := []Action{}
	for _, t := range sm.AvailableTransitions(status) {
		if !seen[t.Action] {
			seen[t.Action] = true
			actions = append(actions, t.Action)
		}
	}
	for _, a := range sm.Activities[status] {
		if !seen[a] {
			seen[a] = true
			actions = append(actions, a)
		}
	}
	return actions
}
