package indices

import (
	"context"
	"fmt"
	"itad/account"
	"itad/client/es"
	"itad/common"
	"itad/domain/asset"
	"itad/domain/state"
	"itad/domain/workorder"
	"itad/persistence"
	"time"

	"github.com/fundwit/go-commons/types"
)

var (
	WorkOrderIndexName = "work_orders"
)

// WorkOrderDocument is the searchable view of a work order, denormalized with its asset and technician.
type WorkOrderDocument struct {
	ID       types.ID     `json:"id"`
	Number   string       `json:"workOrderNumber"`
	Status   state.Status `json:"status"`
	Priority string       `json:"priority"`

	AssetID    types.ID `json:"assetId"`
	Serial     string   `json:"serial,omitempty"`
	IMEI       string   `json:"imei,omitempty"`
	Model      string   `json:"model,omitempty"`
	DeviceType string   `json:"deviceType,omitempty"`

	TechnicianID   types.ID `json:"technicianId"`
	TechnicianName string   `json:"technicianName,omitempty"`

	ReportedIssue  string `json:"reportedIssue"`
	Diagnosis      string `json:"diagnosis,omitempty"`
	Resolution     string `json:"resolution,omitempty"`
	WarrantyStatus string `json:"warrantyStatus"`
	FailureType    string `json:"failureType,omitempty"`
	ReturnReason   string `json:"returnReason,omitempty"`
	QCAttempts     int    `json:"qcAttempts"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

// BuildDocument tolerates a missing asset or technician, the document is still indexed without them.
func BuildDocument(wo *workorder.WorkOrder) WorkOrderDocument {
	doc := WorkOrderDocument{
		ID: wo.ID, Number: wo.Number, Status: wo.Status, Priority: wo.Priority,
		AssetID: wo.AssetID, TechnicianID: wo.TechnicianID,
		ReportedIssue: wo.ReportedIssue, Diagnosis: wo.Diagnosis, Resolution: wo.Resolution,
		WarrantyStatus: wo.WarrantyStatus, FailureType: wo.FailureType, ReturnReason: wo.ReturnReason,
		QCAttempts: wo.QCAttempts, CreatedAt: wo.CreatedAt, UpdatedAt: wo.UpdatedAt,
	}

	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if a, err := asset.DetailAssetFunc(wo.AssetID, db); err == nil {
		doc.Serial, doc.IMEI, doc.Model, doc.DeviceType = a.Serial, a.IMEI, a.Model, a.DeviceType
	} else {
		common.Log.Warnf("index work order %s: asset %s: %v", wo.Number, wo.AssetID, err)
	}
	if wo.TechnicianID != 0 {
		if t, err := account.DetailTechnicianFunc(wo.TechnicianID, db); err == nil {
			doc.TechnicianName = t.DisplayName()
		} else {
			common.Log.Warnf("index work order %s: technician %s: %v", wo.Number, wo.TechnicianID, err)
		}
	}
	return doc
}

func IndexWorkOrders(workOrders []workorder.WorkOrder) error {
	docs := make([]WorkOrderDocument, 0, len(workOrders))
	for i := range workOrders {
		docs = append(docs, BuildDocument(&workOrders[i]))
	}

	if err := saveWorkOrderDocuments(docs); err != nil {
		return err
	}
	return nil
}

func saveWorkOrderDocuments(docs []WorkOrderDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(context.Background(), WorkOrderIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			common.Log.Warnf("index work order %d %s %s", doc.ID, doc.Number, err)
		} else {
			common.Log.Infof("index work order %d %s successfully", doc.ID, doc.Number)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
