package asset

import (
	"itad/bizerror"
	"itad/persistence"
	"itad/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathAssets = "/v1/assets"
)

func RegisterAssetsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAssets, middleWares...)
	g.POST("", handleRegisterAsset)
	g.GET(":id", handleDetailAsset)
}

func handleRegisterAsset(c *gin.Context) {
	registration := AssetRegistration{}
	if err := c.ShouldBindBodyWith(&registration, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	a, err := RegisterAssetFunc(&registration, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, a)
}

func handleDetailAsset(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s := session.ExtractSessionFromGinContext(c)
	a, err := DetailAssetFunc(id, persistence.ActiveDataSourceManager.GormDB(s.Ctx()))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, a)
}
