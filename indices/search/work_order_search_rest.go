package search

import (
	"itad/bizerror"
	"itad/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	PathWorkOrderSearch = "/v1/work-order-search"
)

func RegisterSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkOrderSearch, middleWares...)
	g.GET("", handleSearchWorkOrders)
}

func handleSearchWorkOrders(c *gin.Context) {
	q := WorkOrderSearch{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	docs, err := SearchWorkOrdersFunc(&q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, docs)
}
