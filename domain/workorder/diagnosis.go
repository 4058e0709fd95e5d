package workorder

import (
	"fmt"
	"itad/bizerror"
	"itad/domain/failure"
	"itad/domain/state"
	"itad/event"
	"itad/session"
	"strconv"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ClassifyWarrantyFunc    = ClassifyWarranty
	SendQuoteFunc           = SendQuote
	RespondToQuoteFunc      = RespondToQuote
	MarkIrreparableFunc     = MarkIrreparable
	SetIntakeTestResultFunc = SetIntakeTestResult
)

func property(name, oldValue, newValue string) event.UpdatedProperty {
	return event.UpdatedProperty{PropertyName: name, PropertyDesc: name,
		OldValue: oldValue, OldValueDesc: oldValue, NewValue: newValue, NewValueDesc: newValue}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func validateQuote(c *QuoteCreation) error {
	if c.PartsCost < 0 {
		return bizerror.NewValidationError("partsCost", "must not be negative")
	}
	if c.LaborCost < 0 {
		return bizerror.NewValidationError("laborCost", "must not be negative")
	}
	if c.PartsCost+c.LaborCost <= 0 {
		return bizerror.NewValidationError("quoteAmount", "parts cost plus labor cost must be positive")
	}
	return nil
}

// quoteChange moves an open work order to waiting_quote with a pending quote.
func quoteChange(wo *WorkOrder, c *QuoteCreation) *change {
	amount := c.PartsCost + c.LaborCost
	return &change{
		transition: state.SendQuote,
		updates: map[string]interface{}{
			"parts_cost": c.PartsCost, "labor_cost": c.LaborCost, "quote_amount": amount,
			"quote_status": QuotePending, "quote_notes": strings.TrimSpace(c.Notes),
			"warranty_status": WarrantyOutOfWarranty,
		},
		properties: []event.UpdatedProperty{
			property("warrantyStatus", wo.WarrantyStatus, WarrantyOutOfWarranty),
			property("quoteAmount", formatAmount(wo.QuoteAmount), formatAmount(amount)),
			property("quoteStatus", wo.QuoteStatus, QuotePending),
		},
	}
}

// diagnosisOpen rejects a second classification of the same work order.
func diagnosisOpen(wo *WorkOrder, action state.Action) error {
	if wo.WarrantyStatus != WarrantyPendingValidation {
		return bizerror.NewInvalidStateError(string(action), string(wo.Status))
	}
	return nil
}

// ClassifyWarranty closes the diagnosis.
// in_warranty starts the repair, out_of_warranty sends the quote built from the given costs.
func ClassifyWarranty(id types.ID, c *WarrantyClassification, s *session.Session) (*WorkOrder, error) {
	classification := strings.ToLower(strings.TrimSpace(c.Classification))
	switch classification {
	case WarrantyInWarranty, WarrantyOutOfWarranty:
	case ClassificationIrreparable:
		return nil, bizerror.NewValidationError("classification",
			"irreparable requires a reason and evidence, mark the work order irreparable instead")
	default:
		return nil, bizerror.NewValidationError("classification", "must be one of in_warranty, out_of_warranty, irreparable")
	}

	var failureType *failure.Type
	if strings.TrimSpace(c.FailureType) != "" {
		t, found := failure.Default.Lookup(strings.TrimSpace(c.FailureType))
		if !found {
			return nil, bizerror.NewValidationError("failureType", fmt.Sprintf("unknown failure type '%s'", c.FailureType))
		}
		failureType = &t
	}
	if classification == WarrantyInWarranty && failureType == nil {
		return nil, bizerror.NewValidationError("failureType", "is required for in_warranty")
	}
	quote := &QuoteCreation{PartsCost: c.PartsCost, LaborCost: c.LaborCost, Notes: c.QuoteNotes}
	if classification == WarrantyOutOfWarranty {
		if err := validateQuote(quote); err != nil {
			return nil, err
		}
	}

	return mutate(id, state.ClassifyWarranty, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		if err := diagnosisOpen(wo, state.ClassifyWarranty); err != nil {
			return nil, err
		}
		var ch *change
		if classification == WarrantyOutOfWarranty {
			ch = quoteChange(wo, quote)
		} else {
			ch = &change{
				transition: state.ClassifyWarranty,
				updates:    map[string]interface{}{"warranty_status": classification},
				properties: []event.UpdatedProperty{property("warrantyStatus", wo.WarrantyStatus, classification)},
			}
		}
		if failureType != nil {
			ch.updates["failure_type"] = failureType.ID
			ch.updates["failure_category"] = failureType.Category
			ch.properties = append(ch.properties, property("failureType", wo.FailureType, failureType.ID))
		}
		if diagnosis := strings.TrimSpace(c.Diagnosis); diagnosis != "" {
			ch.updates["diagnosis"] = diagnosis
			ch.properties = append(ch.properties, property("diagnosis", wo.Diagnosis, diagnosis))
		}
		if c.WarrantyEndDate != nil {
			ch.updates["warranty_end_date"] = c.WarrantyEndDate
		}
		return ch, nil
	})
}

// SendQuote closes the diagnosis of an out-of-warranty device with a quote for the customer.
func SendQuote(id types.ID, c *QuoteCreation, s *session.Session) (*WorkOrder, error) {
	if err := validateQuote(c); err != nil {
		return nil, err
	}
	return mutate(id, state.SendQuote, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		if err := diagnosisOpen(wo, state.SendQuote); err != nil {
			return nil, err
		}
		return quoteChange(wo, c), nil
	})
}

// RespondToQuote records the decision of the customer, taken by a supervisor on the customer's behalf.
func RespondToQuote(id types.ID, c *QuoteResponse, s *session.Session) (*WorkOrder, error) {
	if s == nil || !s.Perms.HasRole(session.PermSupervisor) {
		return nil, bizerror.ErrForbidden
	}
	if c.Approved == nil {
		return nil, bizerror.NewValidationError("approved", "must not be empty")
	}
	action := state.RejectQuote
	if *c.Approved {
		action = state.ApproveQuote
	}

	return mutate(id, action, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		if wo.QuoteStatus != QuotePending {
			return nil, bizerror.NewInvalidStateError(string(action), "quote "+wo.QuoteStatus)
		}
		if action == state.ApproveQuote {
			now := time.Now()
			return &change{
				transition: action,
				updates:    map[string]interface{}{"quote_status": QuoteApproved, "quote_approved_at": &now},
				properties: []event.UpdatedProperty{property("quoteStatus", wo.QuoteStatus, QuoteApproved)},
			}, nil
		}
		return &change{
			transition: action,
			updates:    map[string]interface{}{"quote_status": QuoteRejected, "return_reason": ReturnReasonQuoteRejected},
			properties: []event.UpdatedProperty{
				property("quoteStatus", wo.QuoteStatus, QuoteRejected),
				property("returnReason", wo.ReturnReason, ReturnReasonQuoteRejected),
			},
		}, nil
	})
}

// MarkIrreparable sends the device back to the customer unrepaired; reason and evidence are both mandatory.
func MarkIrreparable(id types.ID, c *IrreparableMarking, s *session.Session) (*WorkOrder, error) {
	reason := strings.TrimSpace(c.Reason)
	if reason == "" {
		return nil, bizerror.NewValidationError("reason", "must not be empty")
	}
	evidence := strings.TrimSpace(c.EvidenceRef)
	if evidence == "" {
		return nil, bizerror.NewValidationError("evidenceRef", "must not be empty")
	}

	return mutate(id, state.MarkIrreparable, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		now := time.Now()
		return &change{
			transition: state.MarkIrreparable,
			updates: map[string]interface{}{
				"is_irreparable": true, "irreparable_reason": reason, "irreparable_evidence": evidence,
				"irreparable_marked_at": &now, "return_reason": ReturnReasonIrreparable,
			},
			properties: []event.UpdatedProperty{
				property("isIrreparable", "false", "true"),
				property("irreparableReason", wo.IrreparableReason, reason),
			},
		}, nil
	})
}

// SetIntakeTestResult records the MMI test run when the device is received.
func SetIntakeTestResult(id types.ID, testId string, c *TestResult, s *session.Session) (*WorkOrder, error) {
	t, err := parseTestResult(testId, c)
	if err != nil {
		return nil, err
	}
	return mutate(id, state.SetIntakeTest, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		return &change{
			updates:    map[string]interface{}{"mmi_test_in": wo.MMITestIn.Set(t, *c.Passed)},
			properties: []event.UpdatedProperty{testProperty("mmiTestIn", t, wo.MMITestIn, c.Passed)},
		}, nil
	})
}
