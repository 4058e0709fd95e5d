package testinfra

import (
	"context"
	"io"
	"itad/session"
	"net/http"
	"net/http/httptest"

	"github.com/fundwit/go-commons/types"
)

// BuildSession builds a session of the identity uid holding perms.
func BuildSession(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Context:  context.Background(),
		Token:    "token_" + uid.String(),
		Identity: session.Identity{ID: uid, Name: "user" + uid.String(), Nickname: "User " + uid.String()},
		Perms:    perms,
	}
}

func ExecuteRequest(req *http.Request, handler http.Handler) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}
