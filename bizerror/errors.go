package bizerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: e.Error(), Data: nil}
}

// ValidationError reports a missing or invalid input; the caller must fix it and resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
func (e *ValidationError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "workorder.validation_failed", Message: e.Error(),
		Data: map[string]string{"field": e.Field}}
}

// InvalidStateError reports an action attempted from a status that does not permit it,
// including the case where a concurrent request advanced the status first.
type InvalidStateError struct {
	Action string
	Status string
}

func NewInvalidStateError(action, status string) *InvalidStateError {
	return &InvalidStateError{Action: action, Status: status}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("action %s is not allowed in status %s", e.Action, e.Status)
}
func (e *InvalidStateError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "workorder.invalid_state", Message: e.Error(),
		Data: map[string]string{"action": e.Action, "status": e.Status}}
}

// OutOfStockError is the only engine error with an expected retry path.
type OutOfStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.SKU, e.Requested, e.Available)
}
func (e *OutOfStockError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "parts.out_of_stock", Message: e.Error(),
		Data: map[string]interface{}{"sku": e.SKU, "requested": e.Requested, "available": e.Available, "retryable": true}}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
func (e *NotFoundError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusNotFound, Code: "common.record_not_found", Message: e.Error(),
		Data: map[string]string{"resource": e.Resource, "id": e.ID}}
}
