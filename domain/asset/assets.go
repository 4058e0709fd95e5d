package asset

import (
	"errors"
	"itad/bizerror"
	"itad/idgen"
	"itad/persistence"
	"itad/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const WarehouseIntake = "INTAKE"

// Asset is a device received by the workshop. Its warehouse bookkeeping is owned elsewhere,
// the workshop only reads the identity and moves the asset once a repair is closed.
type Asset struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	Serial     string   `json:"serial" gorm:"unique_index"`
	IMEI       string   `json:"imei" gorm:"column:imei"`
	DeviceType string   `json:"deviceType"`
	Model      string   `json:"model"`
	Warehouse  string   `json:"warehouse"`

	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

type AssetRegistration struct {
	Serial     string `json:"serial"     binding:"required,lte=64"`
	IMEI       string `json:"imei"       binding:"omitempty,numeric,len=15"`
	DeviceType string `json:"deviceType" binding:"required"`
	Model      string `json:"model"`
	Warehouse  string `json:"warehouse"`
}

var (
	assetIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RegisterAssetFunc   = RegisterAsset
	DetailAssetFunc     = DetailAsset
	MoveToWarehouseFunc = MoveToWarehouse
)

// Identifier is the device identity recorded as the original one when a unit is swapped.
func (a *Asset) Identifier() string {
	if a.IMEI != "" {
		return a.IMEI
	}
	return a.Serial
}

func RegisterAsset(c *AssetRegistration, s *session.Session) (*Asset, error) {
	if !s.Perms.HasAnyRole(session.PermTechnician, session.PermSupervisor) {
		return nil, bizerror.ErrForbidden
	}
	warehouse := strings.ToUpper(strings.TrimSpace(c.Warehouse))
	if warehouse == "" {
		warehouse = WarehouseIntake
	}
	now := time.Now()
	a := Asset{ID: idgen.NextID(assetIdWorker), Serial: strings.TrimSpace(c.Serial), IMEI: strings.TrimSpace(c.IMEI),
		DeviceType: c.DeviceType, Model: c.Model, Warehouse: warehouse, CreateTime: now, UpdateTime: now}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Create(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// DetailAsset reads through db so that callers inside a transaction see a consistent asset.
func DetailAsset(id types.ID, db *gorm.DB) (*Asset, error) {
	var a Asset
	if err := db.Where(&Asset{ID: id}).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.NewNotFoundError("asset", id.String())
		}
		return nil, err
	}
	return &a, nil
}

func MoveToWarehouse(id types.ID, warehouse string, db *gorm.DB) error {
	warehouse = strings.ToUpper(strings.TrimSpace(warehouse))
	if warehouse == "" {
		return bizerror.NewValidationError("warehouse", "must not be empty")
	}
	q := db.Model(&Asset{}).Where("id = ?", id).Updates(map[string]interface{}{"warehouse": warehouse, "update_time": time.Now()})
	if q.Error != nil {
		return q.Error
	}
	if q.RowsAffected != 1 {
		return bizerror.NewNotFoundError("asset", id.String())
	}
	return nil
}
