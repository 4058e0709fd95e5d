package board

import (
	"itad/bizerror"
	"itad/common"
	"itad/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	PathBoard = "/v1/workshop/board"

	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
)

func RegisterBoardRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathBoard, middleWares...)
	g.GET("", handleBoard)
}

func handleBoard(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	if !s.Perms.HasAnyRole(session.PermTechnician, session.PermSupervisor) {
		panic(bizerror.ErrForbidden)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		common.Log.Warnf("failed to upgrade board connection: %v", err)
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer), name: s.Identity.Name}
	ActiveHub.register(cl)
	go cl.writePump()
	cl.readPump(ActiveHub)
}
