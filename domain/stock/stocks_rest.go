package stock

import (
	"itad/bizerror"
	"itad/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathPartStocks = "/v1/part-stocks"
)

func RegisterPartStocksRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathPartStocks, middleWares...)
	g.PUT("", handleSetGoodStock)
	g.GET(":sku", handleQueryStocks)
}

func handleSetGoodStock(c *gin.Context) {
	setting := StockSetting{}
	if err := c.ShouldBindBodyWith(&setting, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := SetGoodStockFunc(&setting, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleQueryStocks(c *gin.Context) {
	stocks, err := QueryStocksFunc(c.Param("sku"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stocks)
}
