package workorder

import (
	"itad/domain/qc"
	"itad/domain/state"
	"time"

	"github.com/fundwit/go-commons/types"
)

const SourceTypeWorkOrder = "WORK_ORDER"

const (
	WarrantyPendingValidation = "pending_validation"
	WarrantyInWarranty        = "in_warranty"
	WarrantyOutOfWarranty     = "out_of_warranty"

	// ClassificationIrreparable is accepted as input only, it is never stored as a warranty status.
	ClassificationIrreparable = "irreparable"
)

const (
	QuoteNone     = "none"
	QuotePending  = "pending"
	QuoteApproved = "approved"
	QuoteRejected = "rejected"
)

const (
	ReturnReasonQuoteRejected = "quote_rejected"
	ReturnReasonIrreparable   = "irreparable"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	PartRequestPending   = "pending"
	PartRequestDispensed = "dispensed"
)

// WorkOrder tracks one device through diagnosis, repair and quality control.
type WorkOrder struct {
	ID           types.ID     `json:"id" gorm:"primary_key"`
	Number       string       `json:"workOrderNumber" gorm:"column:work_order_number;unique_index"`
	AssetID      types.ID     `json:"assetId" gorm:"index"`
	TechnicianID types.ID     `json:"technicianId"`
	Status       state.Status `json:"status" sql:"type:VARCHAR(32);index"`
	Priority     string       `json:"priority"`
	Revision     int          `json:"revision"`

	ReportedIssue string `json:"reportedIssue" sql:"type:TEXT"`
	Diagnosis     string `json:"diagnosis" sql:"type:TEXT"`
	Resolution    string `json:"resolution" sql:"type:TEXT"`

	WarrantyStatus  string     `json:"warrantyStatus"`
	WarrantyEndDate *time.Time `json:"warrantyEndDate"`
	FailureType     string     `json:"failureType"`
	FailureCategory string     `json:"failureCategory"`
	PartsCost       float64    `json:"partsCost" sql:"type:DECIMAL(12,2)"`
	LaborCost       float64    `json:"laborCost" sql:"type:DECIMAL(12,2)"`
	QuoteAmount     float64    `json:"quoteAmount" sql:"type:DECIMAL(12,2)"`
	QuoteStatus     string     `json:"quoteStatus"`
	QuoteNotes      string     `json:"quoteNotes" sql:"type:TEXT"`
	QuoteApprovedAt *time.Time `json:"quoteApprovedAt"`

	IsIrreparable       bool       `json:"isIrreparable"`
	IrreparableReason   string     `json:"irreparableReason" sql:"type:TEXT"`
	IrreparableMarkedAt *time.Time `json:"irreparableMarkedAt"`
	IrreparableEvidence string     `json:"irreparableEvidence"`
	ReturnReason        string     `json:"returnReason"`

	SeedstockExchange bool       `json:"seedstockExchange"`
	OriginalIMEI      string     `json:"originalImei" gorm:"column:original_imei"`
	OriginalSerial    string     `json:"originalSerial" gorm:"column:original_serial"`
	NewIMEI           string     `json:"newImei" gorm:"column:new_imei"`
	NewSerial         string     `json:"newSerial" gorm:"column:new_serial"`
	SeedstockNotes    string     `json:"seedstockNotes" sql:"type:TEXT"`
	SeedstockDate     *time.Time `json:"seedstockDate"`

	MMITestIn     qc.Results `json:"mmiTestIn" gorm:"column:mmi_test_in" sql:"type:TEXT"`
	MMITestOut    qc.Results `json:"mmiTestOut" gorm:"column:mmi_test_out" sql:"type:TEXT"`
	QCPassed      *bool      `json:"qcPassed" gorm:"column:qc_passed"`
	QCPerformedAt *time.Time `json:"qcPerformedAt" gorm:"column:qc_performed_at"`
	QCAttempts    int        `json:"qcAttempts" gorm:"column:qc_attempts"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// PartRequest is a spare part asked for during repair. It is immutable once dispensed.
type PartRequest struct {
	ID             types.ID `json:"id" gorm:"primary_key"`
	WorkOrderID    types.ID `json:"workOrderId" gorm:"index"`
	PartSKU        string   `json:"partSku" gorm:"column:part_sku"`
	PartName       string   `json:"partName"`
	Quantity       int      `json:"quantity"`
	Status         string   `json:"status"`
	StockAvailable int      `json:"stockAvailable"`
	Notes          string   `json:"notes" sql:"type:TEXT"`

	ReturnedPartSKU       string `json:"returnedPartSku" gorm:"column:returned_part_sku"`
	ReturnedPartCondition string `json:"returnedPartCondition"`
	ReturnedSKUMismatch   bool   `json:"returnedSkuMismatch" gorm:"column:returned_sku_mismatch"`

	RequestedBy types.ID   `json:"requestedBy"`
	DispensedBy types.ID   `json:"dispensedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	DispensedAt *time.Time `json:"dispensedAt"`
}

// WorkOrderSequence holds the next number to hand out for a prefix.
type WorkOrderSequence struct {
	Prefix    string `json:"prefix" gorm:"primary_key"`
	NextValue int64  `json:"nextValue"`
}

type WorkOrderCreation struct {
	AssetID       types.ID `json:"assetId"`
	ReportedIssue string   `json:"reportedIssue"`
	Priority      string   `json:"priority"`
	TechnicianID  types.ID `json:"technicianId"`
}

type WorkOrderQuery struct {
	Status       string   `json:"status" form:"status"`
	AssetID      types.ID `json:"assetId" form:"assetId"`
	TechnicianID types.ID `json:"technicianId" form:"technicianId"`
	Keyword      string   `json:"keyword" form:"keyword"`

	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"pageSize"`
}

type TechnicianAssignment struct {
	TechnicianID types.ID `json:"technicianId"`
}

// WarrantyClassification closes the diagnosis. Out-of-warranty classifications carry the quote.
type WarrantyClassification struct {
	Classification  string     `json:"classification" binding:"required"`
	FailureType     string     `json:"failureType"`
	Diagnosis       string     `json:"diagnosis"`
	WarrantyEndDate *time.Time `json:"warrantyEndDate"`

	PartsCost  float64 `json:"partsCost"`
	LaborCost  float64 `json:"laborCost"`
	QuoteNotes string  `json:"quoteNotes"`
}

type QuoteCreation struct {
	PartsCost float64 `json:"partsCost" binding:"gte=0"`
	LaborCost float64 `json:"laborCost" binding:"gte=0"`
	Notes     string  `json:"notes"`
}

type QuoteResponse struct {
	Approved *bool `json:"approved" binding:"required"`
}

type IrreparableMarking struct {
	Reason      string `json:"reason"`
	EvidenceRef string `json:"evidenceRef"`
}

type TestResult struct {
	Passed *bool `json:"passed" binding:"required"`
}

type PartRequestCreation struct {
	SKU      string `json:"sku"`
	PartName string `json:"partName"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

type PartDispatch struct {
	ReturnedPartSKU       string `json:"returnedPartSku"`
	ReturnedPartCondition string `json:"returnedPartCondition"`
}

type SeedstockWait struct {
	Notes string `json:"notes"`
}

type SeedstockExchange struct {
	OriginalIMEI   string `json:"originalImei"`
	NewIMEI        string `json:"newImei"`
	OriginalSerial string `json:"originalSerial"`
	NewSerial      string `json:"newSerial"`
	Notes          string `json:"notes"`
}

type RepairCompletion struct {
	Resolution string `json:"resolution"`
}

type RepairReturn struct {
	Notes string `json:"notes"`
}

// Gate is how a phase tab of the work order page behaves.
type Gate string

const (
	GateLocked    Gate = "locked"
	GateActive    Gate = "active"
	GateCompleted Gate = "completed"
	GateReadonly  Gate = "readonly"
)

type Gating struct {
	Diagnosis Gate `json:"diagnosis"`
	Repair    Gate `json:"repair"`
	QC        Gate `json:"qc"`
	History   Gate `json:"history"`
}

// WorkOrderDetail is the read model of the work order page.
type WorkOrderDetail struct {
	WorkOrder

	PartRequests     []PartRequest  `json:"partRequests"`
	IntakeTests      []qc.Entry     `json:"intakeTests"`
	QCTests          []qc.Entry     `json:"qcTests"`
	LegalNextActions []state.Action `json:"legalNextActions"`
	Gating           Gating         `json:"gating"`
}
