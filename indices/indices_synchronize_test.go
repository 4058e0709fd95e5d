package indices_test

import (
	"context"
	"errors"
	"itad/account"
	"itad/bizerror"
	"itad/client/es"
	"itad/domain/asset"
	"itad/domain/state"
	"itad/domain/workorder"
	"itad/event"
	"itad/indices"
	"itad/session"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

type indexResult struct {
	index string
	id    types.ID
	doc   interface{}
}

func stubCollaborators() {
	asset.DetailAssetFunc = func(id types.ID, db *gorm.DB) (*asset.Asset, error) {
		return &asset.Asset{ID: id, Serial: "SN-" + id.String(), IMEI: "356938035643809", Model: "Pixel 7", DeviceType: "phone"}, nil
	}
	account.DetailTechnicianFunc = func(id types.ID, db *gorm.DB) (*account.TechnicianInfo, error) {
		return nil, bizerror.NewNotFoundError("technician", id.String())
	}
}

func pagedWorkOrders(total int) func(page, size int) ([]workorder.WorkOrder, error) {
	return func(page, size int) ([]workorder.WorkOrder, error) {
		workOrders := []workorder.WorkOrder{}
		cur := size * (page - 1)
		n := 0
		for cur < total && n < size {
			workOrders = append(workOrders, workorder.WorkOrder{ID: types.ID(cur + 1), AssetID: 7, Status: state.Open})
			cur++
			n++
		}
		return workOrders, nil
	}
}

func TestScheduleNewSyncRun(t *testing.T) {
	RegisterTestingT(t)

	t.Run("only supervisor can schedule sync run", func(t *testing.T) {
		s := session.Session{Perms: session.Permissions{session.PermTechnician}}
		success, err := indices.ScheduleNewSyncRun(&s)
		Expect(err).To(Equal(bizerror.ErrForbidden))
		Expect(success).To(BeFalse())
	})

	t.Run("schedule sync run channel should works", func(t *testing.T) {
		indices.IndicesFullSyncFunc = func() error {
			time.Sleep(100 * time.Millisecond)
			return nil
		}
		defer func() { indices.IndicesFullSyncFunc = indices.IndicesFullSync }()

		s := session.Session{Perms: session.Permissions{session.PermSupervisor}}
		success, err := indices.ScheduleNewSyncRun(&s)
		Expect(err).To(BeNil())
		Expect(success).To(BeTrue())

		success, err = indices.ScheduleNewSyncRun(&s)
		Expect(err).To(BeNil())
		Expect(success).To(BeFalse())

		time.Sleep(200 * time.Millisecond)

		success, err = indices.ScheduleNewSyncRun(&s)
		Expect(err).To(BeNil())
		Expect(success).To(BeTrue())
		time.Sleep(150 * time.Millisecond)
	})
}

func TestIndexWorkOrderEventHandle(t *testing.T) {
	RegisterTestingT(t)
	stubCollaborators()

	t.Run("only accept event of work order", func(t *testing.T) {
		Expect(indices.IndexWorkOrderEventHandle(&event.EventRecord{Event: event.Event{SourceType: "ASSET"}})).To(BeNil())
	})

	t.Run("work order event handle success", func(t *testing.T) {
		docs := []indexResult{}
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			docs = append(docs, indexResult{index, id, doc})
			return nil
		}
		workorder.DetailWorkOrderFunc = func(id types.ID, s *session.Session) (*workorder.WorkOrderDetail, error) {
			Expect(s.Perms.HasRole(session.PermTechnician)).To(BeTrue())
			return &workorder.WorkOrderDetail{WorkOrder: workorder.WorkOrder{ID: id, Number: "WO-000001", AssetID: 7,
				TechnicianID: 3, Status: state.QCPending}}, nil
		}
		ev := event.EventRecord{Event: event.Event{SourceType: workorder.SourceTypeWorkOrder, SourceId: 100,
			EventCategory: event.EventCategoryPropertyUpdated}}

		expectedResult := event.EventHandleResult{Success: true, HandlerIdentifier: indices.WorkOrderIndexEventHandlerName}
		Expect(*indices.IndexWorkOrderEventHandle(&ev)).To(Equal(expectedResult))

		Expect(len(docs)).To(Equal(1))
		Expect(docs[0].index).To(Equal(indices.WorkOrderIndexName))
		Expect(docs[0].id).To(Equal(types.ID(100)))
		doc := docs[0].doc.(indices.WorkOrderDocument)
		Expect(doc.Number).To(Equal("WO-000001"))
		Expect(doc.Status).To(Equal(state.QCPending))
		Expect(doc.Serial).To(Equal("SN-7"))
		Expect(doc.Model).To(Equal("Pixel 7"))
		Expect(doc.TechnicianName).To(BeEmpty())
	})

	t.Run("failed in detail work order", func(t *testing.T) {
		workorder.DetailWorkOrderFunc = func(id types.ID, s *session.Session) (*workorder.WorkOrderDetail, error) {
			return nil, errors.New("error on detail work order")
		}
		ev := event.EventRecord{Event: event.Event{SourceType: workorder.SourceTypeWorkOrder, SourceId: 100}}

		expectedResult := event.EventHandleResult{
			Success:           false,
			HandlerIdentifier: indices.WorkOrderIndexEventHandlerName,
			Message:           "detail work order when index work order 100, error on detail work order",
		}
		Expect(*indices.IndexWorkOrderEventHandle(&ev)).To(Equal(expectedResult))
	})

	t.Run("failed in index work order", func(t *testing.T) {
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			return errors.New("error on index document")
		}
		workorder.DetailWorkOrderFunc = func(id types.ID, s *session.Session) (*workorder.WorkOrderDetail, error) {
			return &workorder.WorkOrderDetail{WorkOrder: workorder.WorkOrder{ID: id}}, nil
		}
		ev := event.EventRecord{Event: event.Event{SourceType: workorder.SourceTypeWorkOrder, SourceId: 100}}

		expectedResult := event.EventHandleResult{
			Success:           false,
			HandlerIdentifier: indices.WorkOrderIndexEventHandlerName,
			Message:           "index work order 100, map[100:error on index document]",
		}
		Expect(*indices.IndexWorkOrderEventHandle(&ev)).To(Equal(expectedResult))
	})
}

func TestIndicesFullSync(t *testing.T) {
	RegisterTestingT(t)
	stubCollaborators()

	t.Run("should recover panic to error", func(t *testing.T) {
		raisedErr := errors.New("error on load work orders")
		workorder.LoadWorkOrdersFunc = func(page, size int) ([]workorder.WorkOrder, error) {
			panic(raisedErr)
		}
		Expect(indices.IndicesFullSync()).To(Equal(raisedErr))

		workorder.LoadWorkOrdersFunc = func(page, size int) ([]workorder.WorkOrder, error) {
			panic("error on load work orders")
		}
		Expect(indices.IndicesFullSync()).To(Equal(errors.New("error on indices full sync: error on load work orders")))
	})

	t.Run("should be able to index all work orders", func(t *testing.T) {
		ids := []types.ID{}
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			ids = append(ids, id)
			return nil
		}
		workorder.LoadWorkOrdersFunc = pagedWorkOrders(5)

		indices.SyncBatchSize = 2
		Expect(indices.IndicesFullSync()).To(BeNil())
		Expect(ids).To(Equal([]types.ID{1, 2, 3, 4, 5}))
	})

	t.Run("should continue to next batch when failed in load work orders", func(t *testing.T) {
		ids := []types.ID{}
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			ids = append(ids, id)
			return nil
		}
		load := pagedWorkOrders(5)
		workorder.LoadWorkOrdersFunc = func(page, size int) ([]workorder.WorkOrder, error) {
			if page == 2 {
				return nil, errors.New("error on load work orders")
			}
			return load(page, size)
		}

		indices.SyncBatchSize = 2
		Expect(indices.IndicesFullSync()).To(BeNil())
		Expect(ids).To(Equal([]types.ID{1, 2, 5}))
	})

	t.Run("should continue to next batch when failed in index work orders", func(t *testing.T) {
		ids := []types.ID{}
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			if id == 3 {
				return errors.New("error on index document")
			}
			ids = append(ids, id)
			return nil
		}
		workorder.LoadWorkOrdersFunc = pagedWorkOrders(5)

		indices.SyncBatchSize = 2
		Expect(indices.IndicesFullSync()).To(BeNil())
		Expect(ids).To(Equal([]types.ID{1, 2, 4, 5}))
	})
}
