package sessions

import (
	"itad/account"
	"itad/bizerror"
	"itad/persistence"
	"itad/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

func RegisterSessionsHandler(r *gin.Engine) {
	g := r.Group("/v1/sessions")
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
	technician, err := account.AuthenticateFunc(login.Name, login.Password, db)
	if err != nil {
		panic(err)
	}

	perms := session.Permissions{session.PermTechnician}
	if technician.Role == session.PermSupervisor {
		perms = append(perms, session.PermSupervisor)
	}
	token := uuid.New().String()
	s := session.Session{Token: token, Perms: perms, SigningTime: time.Now(),
		Identity: session.Identity{ID: technician.ID, Name: technician.Name, Nickname: technician.Nickname}}
	session.TokenCache.Set(token, &s, cache.DefaultExpiration)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &s)
}
