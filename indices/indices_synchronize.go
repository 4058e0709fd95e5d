package indices

import (
	"fmt"
	"itad/bizerror"
	"itad/common"
	"itad/domain/workorder"
	"itad/event"
	"itad/session"
	"sync"
)

var (
	WorkOrderIndexEventHandlerName = "workOrderIndexer"
	indexRobot                     = &session.Session{
		Token:    "index-robot",
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    session.Permissions{session.PermTechnician},
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun starts a full rebuild in background, it returns false when one is already running.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasRole(session.PermSupervisor) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		if err := IndicesFullSyncFunc(); err != nil {
			common.Log.Errorf("indices fully sync: %v", err)
		}
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		workOrders, err := workorder.LoadWorkOrdersFunc(page, SyncBatchSize)
		if err != nil {
			common.Log.Warnf("indices fully sync: error on retrieve work orders(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(workOrders) == 0 {
			common.Log.Infof("indices fully sync: there are no more work orders to index")
			return nil
		}

		if err := IndexWorkOrders(workOrders); err != nil {
			common.Log.Warnf("indices fully sync: error on index work orders(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

// IndexWorkOrderEventHandle re-indexes the work order an event was recorded on.
func IndexWorkOrderEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != workorder.SourceTypeWorkOrder {
		return nil
	}

	detail, err := workorder.DetailWorkOrderFunc(e.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail work order when index work order %d, %v", e.SourceId, err),
			HandlerIdentifier: WorkOrderIndexEventHandlerName,
		}
	}
	if err := IndexWorkOrders([]workorder.WorkOrder{detail.WorkOrder}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index work order %d, %v", e.SourceId, err),
			HandlerIdentifier: WorkOrderIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: WorkOrderIndexEventHandlerName}
}
