package workorder

import (
	"context"
	"itad/domain/asset"
	"itad/domain/state"
	"itad/event"
	"itad/persistence"
)

const relocationHandlerIdentifier = "asset-relocation"

var RemarketingWarehouse = "REMARKETING"

// HandleAssetRelocation moves the asset of a finalized work order into the remarketing warehouse.
func HandleAssetRelocation(record *event.EventRecord) *event.EventHandleResult {
	if record.SourceType != SourceTypeWorkOrder || record.Action != string(state.Finalize) {
		return nil
	}

	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	wo, err := findWorkOrder(record.SourceId, db)
	if err != nil {
		return &event.EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: relocationHandlerIdentifier}
	}
	if err := asset.MoveToWarehouseFunc(wo.AssetID, RemarketingWarehouse, db); err != nil {
		return &event.EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: relocationHandlerIdentifier}
	}
	return &event.EventHandleResult{Success: true,
		Message:           "asset " + wo.AssetID.String() + " moved to " + RemarketingWarehouse,
		HandlerIdentifier: relocationHandlerIdentifier}
}
