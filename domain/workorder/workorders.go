package workorder

import (
	"errors"
	"itad/account"
	"itad/bizerror"
	"itad/common"
	"itad/domain/asset"
	"itad/domain/qc"
	"itad/domain/state"
	"itad/event"
	"itad/idgen"
	"itad/persistence"
	"itad/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

var (
	workOrderIdWorker   = sonyflake.NewSonyflake(sonyflake.Settings{})
	partRequestIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateWorkOrderFunc  = CreateWorkOrder
	QueryWorkOrdersFunc  = QueryWorkOrders
	DetailWorkOrderFunc  = DetailWorkOrder
	QueryHistoryFunc     = QueryHistory
	AssignTechnicianFunc = AssignTechnician
	LoadWorkOrdersFunc   = LoadWorkOrders
)

// change is what an action decided to write on a work order.
type change struct {
	// transition moves the status when set
	transition state.Action
	updates    map[string]interface{}
	properties []event.UpdatedProperty
	relations  []event.UpdatedRelation
}

func checkPerms(s *session.Session) error {
	if s == nil || !s.Perms.HasAnyRole(session.PermTechnician, session.PermSupervisor) {
		return bizerror.ErrForbidden
	}
	return nil
}

func findWorkOrder(id types.ID, db *gorm.DB) (*WorkOrder, error) {
	wo := WorkOrder{}
	if err := db.Where(&WorkOrder{ID: id}).First(&wo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.NewNotFoundError("work order", id.String())
		}
		return nil, err
	}
	return &wo, nil
}

func findPartRequests(workOrderId types.ID, db *gorm.DB) ([]PartRequest, error) {
	var records []PartRequest
	if err := db.Where(&PartRequest{WorkOrderID: workOrderId}).Order("created_at ASC").Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// mutate runs action against the work order in one transaction.
// The write is guarded by the status and revision read at the start, a request losing a race gets InvalidStateError.
func mutate(id types.ID, action state.Action, s *session.Session,
	decide func(wo *WorkOrder, tx *gorm.DB) (*change, error)) (*WorkOrder, error) {
	if err := checkPerms(s); err != nil {
		return nil, err
	}

	var ev *event.EventRecord
	var result *WorkOrder
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		wo, err := findWorkOrder(id, tx)
		if err != nil {
			return err
		}
		if !state.WorkOrderStateMachine.Permits(wo.Status, action) {
			return bizerror.NewInvalidStateError(string(action), string(wo.Status))
		}
		c, err := decide(wo, tx)
		if err != nil {
			return err
		}
		if c == nil {
			result = wo
			return nil
		}

		now := time.Now()
		updates := map[string]interface{}{}
		for k, v := range c.updates {
			updates[k] = v
		}
		properties := c.properties
		if c.transition != "" {
			to, ok := state.WorkOrderStateMachine.Next(wo.Status, c.transition)
			if !ok {
				return bizerror.NewInvalidStateError(string(c.transition), string(wo.Status))
			}
			updates["status"] = to
			if to == state.InProgress && wo.StartedAt == nil {
				updates["started_at"] = &now
			}
			properties = append([]event.UpdatedProperty{{PropertyName: "status", PropertyDesc: "Status",
				OldValue: string(wo.Status), OldValueDesc: string(wo.Status), NewValue: string(to), NewValueDesc: string(to)}}, properties...)
		}
		updates["revision"] = wo.Revision + 1
		updates["updated_at"] = now

		q := tx.Model(&WorkOrder{}).Where("id = ? AND status = ? AND revision = ?", wo.ID, wo.Status, wo.Revision).Updates(updates)
		if q.Error != nil {
			return q.Error
		}
		if q.RowsAffected != 1 {
			return bizerror.NewInvalidStateError(string(action), string(wo.Status))
		}

		category := event.EventCategory(event.EventCategoryPropertyUpdated)
		if len(properties) == 0 && len(c.relations) > 0 {
			category = event.EventCategoryRelationUpdated
		}
		ev, err = event.CreateEvent(SourceTypeWorkOrder, wo.ID, wo.Number, string(action), category,
			properties, c.relations, &s.Identity, now, tx)
		if err != nil {
			return err
		}

		result, err = findWorkOrder(id, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(ev)
	return result, nil
}

func normalizePriority(priority string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(priority))
	switch p {
	case "":
		return PriorityNormal, nil
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", bizerror.NewValidationError("priority", "must be one of low, normal, high, urgent")
}

func CreateWorkOrder(c *WorkOrderCreation, s *session.Session) (*WorkOrderDetail, error) {
	if err := checkPerms(s); err != nil {
		return nil, err
	}
	if c.AssetID == 0 {
		return nil, bizerror.NewValidationError("assetId", "must not be empty")
	}
	issue := strings.TrimSpace(c.ReportedIssue)
	if issue == "" {
		return nil, bizerror.NewValidationError("reportedIssue", "must not be empty")
	}
	priority, err := normalizePriority(c.Priority)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var wo *WorkOrder
	var ev *event.EventRecord
	err = persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		if _, err := asset.DetailAssetFunc(c.AssetID, tx); err != nil {
			return err
		}
		if c.TechnicianID != 0 {
			if _, err := account.DetailTechnicianFunc(c.TechnicianID, tx); err != nil {
				return err
			}
		}
		number, err := NextWorkOrderNumber(NumberPrefix, tx)
		if err != nil {
			return err
		}

		wo = &WorkOrder{ID: idgen.NextID(workOrderIdWorker), Number: number, AssetID: c.AssetID, TechnicianID: c.TechnicianID,
			Status: state.Open, Priority: priority, Revision: 1, ReportedIssue: issue,
			WarrantyStatus: WarrantyPendingValidation, QuoteStatus: QuoteNone,
			MMITestIn: qc.Results{}, MMITestOut: qc.Results{}, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(wo).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent(SourceTypeWorkOrder, wo.ID, wo.Number, "create", event.EventCategoryCreated,
			nil, nil, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(ev)
	return buildDetail(wo, []PartRequest{}, s.Perms), nil
}

func DetailWorkOrder(id types.ID, s *session.Session) (*WorkOrderDetail, error) {
	if err := checkPerms(s); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	wo, err := findWorkOrder(id, db)
	if err != nil {
		return nil, err
	}
	partRequests, err := findPartRequests(id, db)
	if err != nil {
		return nil, err
	}
	return buildDetail(wo, partRequests, s.Perms), nil
}

func QueryWorkOrders(q *WorkOrderQuery, s *session.Session) (*common.PagedBody, error) {
	if err := checkPerms(s); err != nil {
		return nil, err
	}

	statuses := []state.Status{}
	if strings.TrimSpace(q.Status) != "" {
		for _, v := range strings.Split(q.Status, ",") {
			status, err := state.ParseStatus(strings.TrimSpace(v))
			if err != nil {
				return nil, bizerror.NewValidationError("status", err.Error())
			}
			statuses = append(statuses, status)
		}
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Model(&WorkOrder{})
	if len(statuses) > 0 {
		db = db.Where("status IN (?)", statuses)
	}
	if q.AssetID != 0 {
		db = db.Where("asset_id = ?", q.AssetID)
	}
	if q.TechnicianID != 0 {
		db = db.Where("technician_id = ?", q.TechnicianID)
	}
	if keyword := strings.TrimSpace(q.Keyword); keyword != "" {
		db = db.Where("work_order_number LIKE ? OR reported_issue LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	var total uint64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := q.Page, q.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	list := []WorkOrder{}
	if err := db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, err
	}
	return &common.PagedBody{List: list, Total: total}, nil
}

// QueryHistory returns the events of a work order, oldest first.
func QueryHistory(id types.ID, s *session.Session) ([]event.EventRecord, error) {
	if err := checkPerms(s); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	if _, err := findWorkOrder(id, db); err != nil {
		return nil, err
	}
	return event.QueryEventsFunc(SourceTypeWorkOrder, id, db)
}

// AssignTechnician is allowed in any status which is not terminal.
func AssignTechnician(id types.ID, c *TechnicianAssignment, s *session.Session) (*WorkOrder, error) {
	if c.TechnicianID == 0 {
		return nil, bizerror.NewValidationError("technicianId", "must not be empty")
	}
	return mutate(id, state.AssignTechnician, s, func(wo *WorkOrder, tx *gorm.DB) (*change, error) {
		technician, err := account.DetailTechnicianFunc(c.TechnicianID, tx)
		if err != nil {
			return nil, err
		}
		if wo.TechnicianID == technician.ID {
			return nil, nil
		}
		return &change{
			updates: map[string]interface{}{"technician_id": technician.ID},
			relations: []event.UpdatedRelation{{PropertyName: "technician", PropertyDesc: "Technician",
				TargetType: "TECHNICIAN", TargetTypeDesc: "Technician",
				OldTargetId: wo.TechnicianID.String(), NewTargetId: technician.ID.String(), NewTargetDesc: technician.DisplayName()}},
		}, nil
	})
}

// LoadWorkOrders pages through all work orders in id order, for index rebuilds.
func LoadWorkOrders(page, size int) ([]WorkOrder, error) {
	workOrders := []WorkOrder{}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if err := db.Order("id ASC").Offset(offset).Limit(size).Find(&workOrders).Error; err != nil {
		return nil, err
	}
	return workOrders, nil
}
