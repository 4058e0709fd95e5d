package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"itad/bizerror"
	"itad/idgen"
	"itad/persistence"
	"itad/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	technicianIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateTechnicianFunc = CreateTechnician
	QueryTechniciansFunc = QueryTechnicians
	DetailTechnicianFunc = DetailTechnician
	AuthenticateFunc     = Authenticate
)

type Technician struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Name     string   `json:"name" gorm:"unique_index"`
	Nickname string   `json:"nickname"`
	Secret   string   `json:"-"`
	Role     string   `json:"role"` // technician | supervisor
}

type TechnicianInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Role     string   `json:"role"`
}

type TechnicianCreation struct {
	Name     string `json:"name"     binding:"required"`
	Nickname string `json:"nickname"`
	Secret   string `json:"secret"   binding:"required"`
	Role     string `json:"role"     binding:"required,oneof=technician supervisor"`
}

func (t Technician) Info() TechnicianInfo {
	return TechnicianInfo{ID: t.ID, Name: t.Name, Nickname: t.Nickname, Role: t.Role}
}

func (t TechnicianInfo) DisplayName() string {
	if t.Nickname != "" {
		return t.Nickname
	}
	return t.Name
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

func CreateTechnician(c *TechnicianCreation, s *session.Session) (*TechnicianInfo, error) {
	if !s.Perms.HasRole(session.PermSupervisor) {
		return nil, bizerror.ErrForbidden
	}
	t := Technician{ID: idgen.NextID(technicianIdWorker), Name: c.Name, Nickname: c.Nickname, Secret: HashSha256(c.Secret), Role: c.Role}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Create(&t).Error; err != nil {
		return nil, err
	}
	info := t.Info()
	return &info, nil
}

func QueryTechnicians(s *session.Session) ([]TechnicianInfo, error) {
	var technicians []Technician
	if err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Order("name ASC").Find(&technicians).Error; err != nil {
		return nil, err
	}
	infos := make([]TechnicianInfo, 0, len(technicians))
	for _, t := range technicians {
		infos = append(infos, t.Info())
	}
	return infos, nil
}

func DetailTechnician(id types.ID, db *gorm.DB) (*TechnicianInfo, error) {
	t := Technician{}
	if err := db.Where(&Technician{ID: id}).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.NewNotFoundError("technician", id.String())
		}
		return nil, err
	}
	info := t.Info()
	return &info, nil
}

// Authenticate returns the technician matching name and password, or ErrUnauthenticated.
func Authenticate(name, password string, db *gorm.DB) (*TechnicianInfo, error) {
	t := Technician{}
	if err := db.Where(&Technician{Name: name, Secret: HashSha256(password)}).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUnauthenticated
		}
		return nil, err
	}
	info := t.Info()
	return &info, nil
}
