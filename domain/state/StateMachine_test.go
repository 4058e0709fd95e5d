package state_test

import (
	"itad/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		stateMachine = state.WorkOrderStateMachine
	})

	Describe("AvailableTransitions", func() {
		It("should return transitions leaving the diagnosis phase", func() {
			Ω(stateMachine.AvailableTransitions(state.Open)).Should(Equal([]state.Transition{
				{Action: state.ClassifyWarranty, From: state.Open, To: state.InProgress},
				{Action: state.SendQuote, From: state.Open, To: state.WaitingQuote},
				{Action: state.MarkIrreparable, From: state.Open, To: state.ReadyToShip},
			}))
			Ω(stateMachine.AvailableTransitions(state.WaitingQuote)).Should(Equal([]state.Transition{
				{Action: state.ApproveQuote, From: state.WaitingQuote, To: state.InProgress},
				{Action: state.RejectQuote, From: state.WaitingQuote, To: state.ReadyToShip},
			}))
		})

		It("should return nothing for terminal statuses", func() {
			Ω(stateMachine.AvailableTransitions(state.Completed)).Should(BeEmpty())
			Ω(stateMachine.AvailableTransitions(state.ReadyToShip)).Should(BeEmpty())
		})
	})

	Describe("Next", func() {
		It("should follow the transition table", func() {
			to, ok := stateMachine.Next(state.WaitingParts, state.CompleteRepair)
			Expect(ok).To(BeTrue())
			Expect(to).To(Equal(state.QCPending))

			to, ok = stateMachine.Next(state.QCPassed, state.Finalize)
			Expect(ok).To(BeTrue())
			Expect(to).To(Equal(state.Completed))
		})

		It("should refuse backward or skipping moves", func() {
			_, ok := stateMachine.Next(state.InProgress, state.ClassifyWarranty)
			Expect(ok).To(BeFalse())
			_, ok = stateMachine.Next(state.Open, state.CompleteRepair)
			Expect(ok).To(BeFalse())
			_, ok = stateMachine.Next(state.QCPending, state.Finalize)
			Expect(ok).To(BeFalse())
			_, ok = stateMachine.Next(state.Completed, state.ReturnToRepair)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Permits", func() {
		It("should permit activities which keep the status", func() {
			Expect(stateMachine.Permits(state.QCPending, state.SetQCTest)).To(BeTrue())
			Expect(stateMachine.Permits(state.WaitingParts, state.RequestPart)).To(BeTrue())
			Expect(stateMachine.Permits(state.InProgress, state.SetQCTest)).To(BeFalse())
			Expect(stateMachine.Permits(state.Completed, state.AssignTechnician)).To(BeFalse())
		})
	})

	Describe("Actions", func() {
		It("should list transitions first without duplicates", func() {
			Expect(stateMachine.Actions(state.Open)).To(Equal([]state.Action{
				state.ClassifyWarranty, state.SendQuote, state.MarkIrreparable, state.SetIntakeTest, state.AssignTechnician,
			}))
			Expect(stateMachine.Actions(state.ReadyToShip)).To(BeEmpty())
		})
	})

	Describe("only forward moves", func() {
		It("should never lead back into the diagnosis phase", func() {
			for _, t := range stateMachine.Transitions {
				if t.From.Phase() != state.PhaseDiagnosis {
					Expect(t.To.Phase()).ToNot(Equal(state.PhaseDiagnosis))
				}
			}
		})

		It("should reach in_progress only from diagnosis or a failed qc", func() {
			for _, t := range stateMachine.Transitions {
				if t.To == state.InProgress {
					Expect([]state.Status{state.Open, state.WaitingQuote, state.QCFailed}).To(ContainElement(t.From))
				}
			}
		})
	})
})

var _ = Describe("Status", func() {
	It("should parse known statuses only", func() {
		for _, s := range state.AllStatuses {
			parsed, err := state.ParseStatus(string(s))
			Expect(err).To(BeNil())
			Expect(parsed).To(Equal(s))
		}
		_, err := state.ParseStatus("quote_rejected")
		Expect(err).ToNot(BeNil())
	})

	It("should map every status to a phase", func() {
		Expect(state.Open.Phase()).To(Equal(state.PhaseDiagnosis))
		Expect(state.WaitingSeedstock.Phase()).To(Equal(state.PhaseRepair))
		Expect(state.QCFailed.Phase()).To(Equal(state.PhaseQC))
		Expect(state.ReadyToShip.Phase()).To(Equal(state.PhaseClosed))
		Expect(state.QCPassed.Category()).To(Equal(state.Inspecting))
		Expect(state.Completed.Terminal()).To(BeTrue())
		Expect(state.QCPassed.Terminal()).To(BeFalse())
	})

	It("should refuse to persist unknown statuses", func() {
		_, err := state.Status("bogus").Value()
		Expect(err).ToNot(BeNil())

		v, err := state.QCPending.Value()
		Expect(err).To(BeNil())
		Expect(v).To(Equal("qc_pending"))

		var s state.Status
		Expect(s.Scan([]byte("waiting_parts"))).To(BeNil())
		Expect(s).To(Equal(state.WaitingParts))
		Expect(s.Scan("nope")).ToNot(BeNil())
		Expect(s.Scan(12)).ToNot(BeNil())
	})
})
