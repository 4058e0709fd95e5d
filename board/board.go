package board

import (
	"fmt"
	"itad/domain/state"
	"itad/domain/workorder"
	"itad/event"
	"itad/session"

	"github.com/fundwit/go-commons/types"
)

const BoardEventHandlerName = "workshopBoard"

var boardRobot = &session.Session{
	Token:    "board-robot",
	Identity: session.Identity{ID: 11, Name: "board-robot"},
	Perms:    session.Permissions{session.PermTechnician},
}

type StatusUpdate struct {
	WorkOrderID types.ID     `json:"workOrderId"`
	Number      string       `json:"number"`
	Status      state.Status `json:"status"`
	Action      string       `json:"action"`
}

// HandleBoardEvent pushes the current status of a work order after each committed change.
func HandleBoardEvent(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != workorder.SourceTypeWorkOrder {
		return nil
	}

	detail, err := workorder.DetailWorkOrderFunc(e.SourceId, boardRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail work order %d for board, %v", e.SourceId, err),
			HandlerIdentifier: BoardEventHandlerName,
		}
	}
	update := StatusUpdate{WorkOrderID: detail.ID, Number: detail.Number, Status: detail.Status, Action: e.Action}
	if err := ActiveHub.Broadcast(update); err != nil {
		return &event.EventHandleResult{Message: err.Error(), HandlerIdentifier: BoardEventHandlerName}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: BoardEventHandlerName}
}
