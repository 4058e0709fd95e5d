package workorder

import (
	"itad/bizerror"
	"itad/domain/asset"
	"itad/domain/qc"
	"itad/domain/state"
	"itad/event"
	"itad/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	AwaitSeedstockFunc            = AwaitSeedstock
	RegisterSeedstockExchangeFunc = RegisterSeedstockExchange
	CompleteRepairFunc            = CompleteRepair
)

// AwaitSeedstock parks the work order until a replacement unit is available.
func AwaitSeedstock(id types.ID, c *SeedstockWait, s *session.Session) (*WorkOrder, error) {
	return mutate(id, state.AwaitSeedstock, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		ch := &change{transition: state.AwaitSeedstock, updates: map[string]interface{}{}}
		if notes := strings.TrimSpace(c.Notes); notes != "" {
			ch.updates["seedstock_notes"] = notes
			ch.properties = append(ch.properties, property("seedstockNotes", wo.SeedstockNotes, notes))
		}
		return ch, nil
	})
}

// RegisterSeedstockExchange records a whole-unit swap. The identifier pairs are written once and never change afterwards.
func RegisterSeedstockExchange(id types.ID, c *SeedstockExchange, s *session.Session) (*WorkOrder, error) {
	newIMEI := strings.TrimSpace(c.NewIMEI)
	if newIMEI == "" {
		return nil, bizerror.NewValidationError("newImei", "must not be empty")
	}

	return mutate(id, state.RegisterSeedstock, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		if wo.SeedstockExchange {
			return nil, bizerror.NewInvalidStateError(string(state.RegisterSeedstock), "seedstock exchange registered")
		}

		originalIMEI := strings.TrimSpace(c.OriginalIMEI)
		originalSerial := strings.TrimSpace(c.OriginalSerial)
		if originalIMEI == "" || originalSerial == "" {
			a, err := asset.DetailAssetFunc(wo.AssetID, tx)
			if err != nil {
				return nil, err
			}
			if originalIMEI == "" {
				originalIMEI = a.Identifier()
			}
			if originalSerial == "" {
				originalSerial = a.Serial
			}
		}
		if originalIMEI == newIMEI {
			return nil, bizerror.NewValidationError("newImei", "must differ from the original identifier")
		}

		now := time.Now()
		updates := map[string]interface{}{
			"seedstock_exchange": true, "original_imei": originalIMEI, "original_serial": originalSerial,
			"new_imei": newIMEI, "new_serial": strings.TrimSpace(c.NewSerial), "seedstock_date": &now,
		}
		if notes := strings.TrimSpace(c.Notes); notes != "" {
			updates["seedstock_notes"] = notes
		}
		return &change{
			updates: updates,
			properties: []event.UpdatedProperty{
				property("seedstockExchange", "false", "true"),
				property("imei", originalIMEI, newIMEI),
			},
		}, nil
	})
}

// CompleteRepair hands the device over to quality control with an empty matrix.
func CompleteRepair(id types.ID, c *RepairCompletion, s *session.Session) (*WorkOrder, error) {
	resolution := strings.TrimSpace(c.Resolution)
	if resolution == "" {
		return nil, bizerror.NewValidationError("resolution", "must not be empty")
	}
	return mutate(id, state.CompleteRepair, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		return &change{
			transition: state.CompleteRepair,
			updates:    map[string]interface{}{"resolution": resolution, "mmi_test_out": qc.Results{}, "qc_passed": nil},
			properties: []event.UpdatedProperty{property("resolution", wo.Resolution, resolution)},
		}, nil
	})
}
