package account

import (
	"itad/bizerror"
	"itad/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathTechnicians = "/v1/technicians"
)

func RegisterTechniciansRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathTechnicians, middleWares...)
	g.GET("", handleQueryTechnicians)
	g.POST("", handleCreateTechnician)
}

func handleQueryTechnicians(c *gin.Context) {
	technicians, err := QueryTechniciansFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, technicians)
}

func handleCreateTechnician(c *gin.Context) {
	creation := TechnicianCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	info, err := CreateTechnicianFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, info)
}
