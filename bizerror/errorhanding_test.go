package bizerror_test

import (
	"errors"
	"fmt"
	"itad/bizerror"
	"itad/testinfra"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func serve(raised interface{}) (int, string) {
	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	router.GET("/", func(c *gin.Context) {
		panic(raised)
	})
	status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), router)
	return status, body
}

func TestErrorHandling(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should map engine errors", func(t *testing.T) {
		status, body := serve(bizerror.NewValidationError("reportedIssue", "must not be empty"))
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"workorder.validation_failed","message":"invalid reportedIssue: must not be empty",
			"data":{"field":"reportedIssue"}}`))

		status, body = serve(bizerror.NewInvalidStateError("save_qc", "open"))
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"workorder.invalid_state","message":"action save_qc is not allowed in status open",
			"data":{"action":"save_qc","status":"open"}}`))

		status, body = serve(&bizerror.OutOfStockError{SKU: "SCR-001", Requested: 2, Available: 1})
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"parts.out_of_stock","message":"insufficient stock for SCR-001: requested 2, available 1",
			"data":{"sku":"SCR-001","requested":2,"available":1,"retryable":true}}`))

		status, body = serve(bizerror.NewNotFoundError("work order", "42"))
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"common.record_not_found","message":"work order 42 not found",
			"data":{"resource":"work order","id":"42"}}`))
	})

	t.Run("should map wrapped engine errors", func(t *testing.T) {
		status, _ := serve(fmt.Errorf("dispatch: %w", bizerror.NewInvalidStateError("dispatch_part", "completed")))
		Expect(status).To(Equal(http.StatusConflict))
	})

	t.Run("should map sentinel errors", func(t *testing.T) {
		status, body := serve(bizerror.ErrForbidden)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden","data":null}`))

		status, body = serve(bizerror.ErrUnauthenticated)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))

		status, _ = serve(gorm.ErrRecordNotFound)
		Expect(status).To(Equal(http.StatusNotFound))

		status, body = serve(&bizerror.ErrBadParam{Cause: errors.New("invalid id")})
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id","data":null}`))
	})

	t.Run("should map unknown panics to internal server error", func(t *testing.T) {
		status, body := serve("boom")
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"boom","data":null}`))
	})

	t.Run("should handle errors attached to context", func(t *testing.T) {
		router := gin.New()
		router.Use(bizerror.ErrorHandling())
		router.GET("/", func(c *gin.Context) {
			_ = c.Error(bizerror.ErrForbidden)
		})
		status, _, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), router)
		Expect(status).To(Equal(http.StatusForbidden))
	})
}
