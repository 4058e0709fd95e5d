package workorder

import (
	"itad/bizerror"
	"itad/common"
	"itad/domain/qc"
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
	SetTestResultFunc   = SetTestResult
	ResetTestResultFunc = ResetTestResult
	SaveQCFunc          = SaveQC
	ReturnToRepairFunc  = ReturnToRepair
	FinalizeFunc        = Finalize
)

func parseTestResult(testId string, c *TestResult) (qc.TestID, error) {
	t, err := qc.ParseTestID(testId)
	if err != nil {
		return "", err
	}
	if c == nil || c.Passed == nil {
		return "", bizerror.NewValidationError("passed", "must not be empty")
	}
	return t, nil
}

func formatResult(r qc.Results, t qc.TestID) string {
	passed, found := r[t]
	if !found {
		return "unset"
	}
	if passed {
		return "pass"
	}
	return "fail"
}

func testProperty(name string, t qc.TestID, old qc.Results, passed *bool) event.UpdatedProperty {
	newValue := "unset"
	if passed != nil {
		newValue = formatResult(qc.Results{t: *passed}, t)
	}
	return property(name+"."+string(t), formatResult(old, t), newValue)
}

// SetTestResult records one entry of the QC matrix; the matrix can be edited until it is saved.
func SetTestResult(id types.ID, testId string, c *TestResult, s *session.Session) (*WorkOrder, error) {
	t, err := parseTestResult(testId, c)
	if err != nil {
		return nil, err
	}
	return mutate(id, state.SetQCTest, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		return &change{
			updates:    map[string]interface{}{"mmi_test_out": wo.MMITestOut.Set(t, *c.Passed)},
			properties: []event.UpdatedProperty{testProperty("mmiTestOut", t, wo.MMITestOut, c.Passed)},
		}, nil
	})
}

// ResetTestResult unsets one entry of the QC matrix, resetting an unset entry changes nothing.
func ResetTestResult(id types.ID, testId string, s *session.Session) (*WorkOrder, error) {
	t, err := qc.ParseTestID(testId)
	if err != nil {
		return nil, err
	}
	return mutate(id, state.ResetQCTest, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		results, changed := wo.MMITestOut.Reset(t)
		if !changed {
			return nil, nil
		}
		return &change{
			updates:    map[string]interface{}{"mmi_test_out": results},
			properties: []event.UpdatedProperty{testProperty("mmiTestOut", t, wo.MMITestOut, nil)},
		}, nil
	})
}

// SaveQC commits the matrix. Every test must be resolved, one failed test fails the whole QC.
func SaveQC(id types.ID, s *session.Session) (*WorkOrder, error) {
	return mutate(id, state.SaveQC, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		summary, err := wo.MMITestOut.Summarize()
		if err != nil {
			return nil, err
		}
		now := time.Now()
		passed := summary.Passed
		transition := state.FailQC
		if passed {
			transition = state.PassQC
		}
		return &change{
			transition: transition,
			updates:    map[string]interface{}{"qc_passed": &passed, "qc_performed_at": &now},
			properties: []event.UpdatedProperty{
				property("qcPassed", "", strconv.FormatBool(passed)),
				property("qcFailCount", "", strconv.Itoa(summary.FailCount)),
			},
		}, nil
	})
}

// ReturnToRepair sends a device which failed QC back to the bench with a fresh matrix.
// The failed attempt stays in the history.
func ReturnToRepair(id types.ID, c *RepairReturn, s *session.Session) (*WorkOrder, error) {
	return mutate(id, state.ReturnToRepair, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		ch := &change{
			transition: state.ReturnToRepair,
			updates: map[string]interface{}{
				"mmi_test_out": qc.Results{}, "qc_passed": nil, "qc_performed_at": nil, "qc_attempts": wo.QCAttempts + 1,
			},
			properties: []event.UpdatedProperty{property("qcAttempts", strconv.Itoa(wo.QCAttempts), strconv.Itoa(wo.QCAttempts+1))},
		}
		if notes := strings.TrimSpace(c.Notes); notes != "" {
			ch.properties = append(ch.properties, property("notes", "", notes))
		}
		return ch, nil
	})
}

// Finalize closes a repaired device. Only a supervisor may sign off.
func Finalize(id types.ID, s *session.Session) (*WorkOrder, error) {
	if s == nil || !s.Perms.HasRole(session.PermSupervisor) {
		return nil, bizerror.ErrForbidden
	}
	wo, err := mutate(id, state.Finalize, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		now := time.Now()
		return &change{
			transition: state.Finalize,
			updates:    map[string]interface{}{"completed_at": &now},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	common.Log.WithField("workOrder", wo.Number).Info("work order finalized")
	return wo, nil
}
