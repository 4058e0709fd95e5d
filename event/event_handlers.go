package event

import (
	"itad/common"
)

/*
return nil if not support
*/
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var EventHandlers []EventHandler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handler := range EventHandlers {
		common.Log.Debug("pre handle event ", record.Event)
		r := handler(record)

		if r == nil {
			continue
		}

		results = append(results, *r)

		if r.Success {
			common.Log.Info("post handle event. ", r)
		} else {
			common.Log.Error("post handler error. ", r)
		}
	}
	return results
}

// Dispatch hands committed events to the registered handlers.
func Dispatch(records ...*EventRecord) {
	if InvokeHandlersFunc == nil {
		return
	}
	for _, record := range records {
		if record != nil {
			InvokeHandlersFunc(record)
		}
	}
}
