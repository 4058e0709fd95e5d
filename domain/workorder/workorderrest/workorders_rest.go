package workorderrest

import (
	"errors"
	"itad/bizerror"
	"itad/domain/workorder"
	"itad/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathWorkOrders   = "/v1/work-orders"
	PathPartRequests = "/v1/part-requests"
)

func RegisterWorkOrdersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkOrders, middleWares...)
	g.POST("", handleCreate)
	g.GET("", handleQuery)
	g.GET(":id", handleDetail)
	g.GET(":id/history", handleQueryHistory)
	g.PUT(":id/technician", handleAssignTechnician)

	g.POST(":id/warranty-classification", handleClassifyWarranty)
	g.POST(":id/quote", handleSendQuote)
	g.POST(":id/quote-response", handleRespondToQuote)
	g.POST(":id/irreparable", handleMarkIrreparable)
	g.PUT(":id/intake-tests/:testId", handleSetIntakeTestResult)

	g.POST(":id/part-requests", handleRequestPart)
	g.POST(":id/seedstock-wait", handleAwaitSeedstock)
	g.POST(":id/seedstock-exchange", handleRegisterSeedstockExchange)
	g.POST(":id/repair-completion", handleCompleteRepair)

	g.PUT(":id/qc-tests/:testId", handleSetTestResult)
	g.DELETE(":id/qc-tests/:testId", handleResetTestResult)
	g.POST(":id/qc", handleSaveQC)
	g.POST(":id/repair-return", handleReturnToRepair)
	g.POST(":id/finalization", handleFinalize)

	p := r.Group(PathPartRequests, middleWares...)
	p.POST(":id/dispatch", handleDispatchPart)
}

func parseID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}

func bindJSON(c *gin.Context, v interface{}) {
	if err := c.ShouldBindBodyWith(v, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
}

func respond(c *gin.Context, status int, body interface{}, err error) {
	if err != nil {
		panic(err)
	}
	c.JSON(status, body)
}

func handleCreate(c *gin.Context) {
	creation := workorder.WorkOrderCreation{}
	bindJSON(c, &creation)
	detail, err := workorder.CreateWorkOrderFunc(&creation, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusCreated, detail, err)
}

func handleQuery(c *gin.Context) {
	query := workorder.WorkOrderQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := workorder.QueryWorkOrdersFunc(&query, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, result, err)
}

func handleDetail(c *gin.Context) {
	detail, err := workorder.DetailWorkOrderFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, detail, err)
}

func handleQueryHistory(c *gin.Context) {
	records, err := workorder.QueryHistoryFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, records, err)
}

func handleAssignTechnician(c *gin.Context) {
	id := parseID(c)
	assignment := workorder.TechnicianAssignment{}
	bindJSON(c, &assignment)
	wo, err := workorder.AssignTechnicianFunc(id, &assignment, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleClassifyWarranty(c *gin.Context) {
	id := parseID(c)
	classification := workorder.WarrantyClassification{}
	bindJSON(c, &classification)
	wo, err := workorder.ClassifyWarrantyFunc(id, &classification, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleSendQuote(c *gin.Context) {
	id := parseID(c)
	quote := workorder.QuoteCreation{}
	bindJSON(c, &quote)
	wo, err := workorder.SendQuoteFunc(id, &quote, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleRespondToQuote(c *gin.Context) {
	id := parseID(c)
	response := workorder.QuoteResponse{}
	bindJSON(c, &response)
	wo, err := workorder.RespondToQuoteFunc(id, &response, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleMarkIrreparable(c *gin.Context) {
	id := parseID(c)
	marking := workorder.IrreparableMarking{}
	bindJSON(c, &marking)
	wo, err := workorder.MarkIrreparableFunc(id, &marking, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleSetIntakeTestResult(c *gin.Context) {
	id := parseID(c)
	result := workorder.TestResult{}
	bindJSON(c, &result)
	wo, err := workorder.SetIntakeTestResultFunc(id, c.Param("testId"), &result, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleRequestPart(c *gin.Context) {
	id := parseID(c)
	creation := workorder.PartRequestCreation{}
	bindJSON(c, &creation)
	pr, err := workorder.RequestPartFunc(id, &creation, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusCreated, pr, err)
}

func handleDispatchPart(c *gin.Context) {
	id := parseID(c)
	dispatch := workorder.PartDispatch{}
	bindJSON(c, &dispatch)
	pr, err := workorder.DispatchPartFunc(id, &dispatch, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, pr, err)
}

func handleAwaitSeedstock(c *gin.Context) {
	id := parseID(c)
	wait := workorder.SeedstockWait{}
	bindJSON(c, &wait)
	wo, err := workorder.AwaitSeedstockFunc(id, &wait, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleRegisterSeedstockExchange(c *gin.Context) {
	id := parseID(c)
	exchange := workorder.SeedstockExchange{}
	bindJSON(c, &exchange)
	wo, err := workorder.RegisterSeedstockExchangeFunc(id, &exchange, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleCompleteRepair(c *gin.Context) {
	id := parseID(c)
	completion := workorder.RepairCompletion{}
	bindJSON(c, &completion)
	wo, err := workorder.CompleteRepairFunc(id, &completion, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleSetTestResult(c *gin.Context) {
	id := parseID(c)
	result := workorder.TestResult{}
	bindJSON(c, &result)
	wo, err := workorder.SetTestResultFunc(id, c.Param("testId"), &result, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleResetTestResult(c *gin.Context) {
	wo, err := workorder.ResetTestResultFunc(parseID(c), c.Param("testId"), session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleSaveQC(c *gin.Context) {
	wo, err := workorder.SaveQCFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleReturnToRepair(c *gin.Context) {
	id := parseID(c)
	ret := workorder.RepairReturn{}
	bindJSON(c, &ret)
	wo, err := workorder.ReturnToRepairFunc(id, &ret, session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}

func handleFinalize(c *gin.Context) {
	wo, err := workorder.FinalizeFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	respond(c, http.StatusOK, wo, err)
}
