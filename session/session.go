package session

import (
	"context"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	PermTechnician = "technician"
	PermSupervisor = "supervisor"
)

type Permissions []string

func (p Permissions) HasRole(role string) bool {
	for _, v := range p {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (p Permissions) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

type Session struct {
	Context context.Context `json:"-"`

	Token    string      `json:"token"`
	Identity Identity    `json:"identity"`
	Perms    Permissions `json:"perms"`

	SigningTime time.Time `json:"signingTime"`
}

func (s *Session) Clone() Session {
	perms := make(Permissions, len(s.Perms))
	copy(perms, s.Perms)
	return Session{Context: s.Context, Token: s.Token, Identity: s.Identity, Perms: perms, SigningTime: s.SigningTime}
}

// Ctx never returns nil so callers can hand it to the storage layer directly.
func (s *Session) Ctx() context.Context {
	if s == nil || s.Context == nil {
		return context.Background()
	}
	return s.Context
}
