package workorder

import (
	"errors"
	"itad/bizerror"
	"itad/common"
	"itad/domain/state"
	"itad/domain/stock"
	"itad/event"
	"itad/idgen"
	"itad/persistence"
	"itad/session"
	"strconv"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	RequestPartFunc  = RequestPart
	DispatchPartFunc = DispatchPart
)

// RequestPart asks for a spare part. The live stock is recorded as a snapshot only; when it is short the
// work order moves to waiting_parts as an advisory flag, the request is never rejected for stock.
func RequestPart(id types.ID, c *PartRequestCreation, s *session.Session) (*PartRequest, error) {
	sku := stock.NormalizeSKU(c.SKU)
	if sku == "" {
		return nil, bizerror.NewValidationError("sku", "must not be empty")
	}
	if c.Quantity <= 0 {
		return nil, bizerror.NewValidationError("quantity", "must be positive")
	}

	var record *PartRequest
	_, err := mutate(id, state.RequestPart, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		available, err := stock.GetStockFunc(sku, tx)
		if err != nil {
			return nil, err
		}
		record = &PartRequest{ID: idgen.NextID(partRequestIdWorker), WorkOrderID: wo.ID, PartSKU: sku,
			PartName: strings.TrimSpace(c.PartName), Quantity: c.Quantity, Status: PartRequestPending,
			StockAvailable: available, Notes: strings.TrimSpace(c.Notes), RequestedBy: s.Identity.ID, CreatedAt: time.Now()}
		if err := tx.Create(record).Error; err != nil {
			return nil, err
		}

		ch := &change{
			relations: []event.UpdatedRelation{{PropertyName: "partRequests", PropertyDesc: "Part Requests",
				TargetType: "PART_REQUEST", TargetTypeDesc: "Part Request",
				NewTargetId: record.ID.String(), NewTargetDesc: sku + " x" + strconv.Itoa(c.Quantity)}},
		}
		if available < c.Quantity && wo.Status == state.InProgress {
			ch.transition = state.AwaitParts
		}
		return ch, nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func findPartRequest(id types.ID, db *gorm.DB) (*PartRequest, error) {
	pr := PartRequest{}
	if err := db.Where(&PartRequest{ID: id}).First(&pr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.NewNotFoundError("part request", id.String())
		}
		return nil, err
	}
	return &pr, nil
}

// DispatchPart hands out the requested part against the returned one. The good stock is decremented and the
// returned part is booked into its defective pool in the same transaction, either both happen or neither.
func DispatchPart(partRequestId types.ID, c *PartDispatch, s *session.Session) (*PartRequest, error) {
	if err := checkPerms(s); err != nil {
		return nil, err
	}
	returnedSKU := stock.NormalizeSKU(c.ReturnedPartSKU)
	if returnedSKU == "" {
		return nil, bizerror.NewValidationError("returnedPartSku", "must not be empty")
	}
	if strings.TrimSpace(c.ReturnedPartCondition) == "" {
		return nil, bizerror.NewValidationError("returnedPartCondition", "must not be empty")
	}
	condition, err := stock.ParseReturnCondition(c.ReturnedPartCondition)
	if err != nil {
		return nil, err
	}

	pr, err := findPartRequest(partRequestId, persistence.ActiveDataSourceManager.GormDB(s.Ctx()))
	if err != nil {
		return nil, err
	}

	var record *PartRequest
	_, err = mutate(pr.WorkOrderID, state.DispatchPart, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		// re-read inside the transaction
		pr, err := findPartRequest(partRequestId, tx)
		if err != nil {
			return nil, err
		}
		if pr.Status != PartRequestPending {
			return nil, bizerror.NewInvalidStateError(string(state.DispatchPart), "part request "+pr.Status)
		}

		now := time.Now()
		mismatch := returnedSKU != pr.PartSKU
		q := tx.Model(&PartRequest{}).Where("id = ? AND status = ?", pr.ID, PartRequestPending).Updates(map[string]interface{}{
			"status": PartRequestDispensed, "returned_part_sku": returnedSKU, "returned_part_condition": condition,
			"returned_sku_mismatch": mismatch, "dispensed_by": s.Identity.ID, "dispensed_at": &now,
		})
		if q.Error != nil {
			return nil, q.Error
		}
		if q.RowsAffected != 1 {
			return nil, bizerror.NewInvalidStateError(string(state.DispatchPart), "part request "+PartRequestDispensed)
		}

		if err := stock.DecrementStockFunc(pr.PartSKU, pr.Quantity, tx); err != nil {
			return nil, err
		}
		if err := stock.IncrementDefectiveStockFunc(returnedSKU, condition, pr.Quantity, tx); err != nil {
			return nil, err
		}
		if mismatch {
			common.Log.WithField("partRequest", pr.ID).
				Warnf("returned part %s does not match requested part %s", returnedSKU, pr.PartSKU)
		}

		record, err = findPartRequest(pr.ID, tx)
		if err != nil {
			return nil, err
		}
		return &change{
			relations: []event.UpdatedRelation{{PropertyName: "partRequests", PropertyDesc: "Part Requests",
				TargetType: "PART_REQUEST", TargetTypeDesc: "Part Request",
				OldTargetId: pr.ID.String(), OldTargetDesc: pr.PartSKU + " " + PartRequestPending,
				NewTargetId: pr.ID.String(), NewTargetDesc: pr.PartSKU + " " + PartRequestDispensed + ", returned " + returnedSKU + " " + condition}},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
