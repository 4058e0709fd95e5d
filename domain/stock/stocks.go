package stock

import (
	"errors"
	"fmt"
	"itad/bizerror"
	"itad/persistence"
	"itad/session"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
)

// ConditionGood is the pool dispatches are served from; every other condition is a defective pool.
const ConditionGood = "good"

var ReturnConditions = []string{"defective", "damaged", "water_damage", "broken", "for_parts"}

// PartStock is the quantity of one sku in one condition pool.
type PartStock struct {
	SKU       string `json:"sku" gorm:"column:sku;primary_key"`
	Condition string `json:"condition" gorm:"column:pool;primary_key"`
	PartName  string `json:"partName"`
	Quantity  int    `json:"quantity"`

	UpdateTime time.Time `json:"updateTime"`
}

type StockSetting struct {
	SKU      string `json:"sku"      binding:"required,lte=64"`
	PartName string `json:"partName" binding:"lte=255"`
	Quantity int    `json:"quantity" binding:"gte=0"`
}

var (
	GetStockFunc                = GetStock
	DecrementStockFunc          = DecrementStock
	IncrementDefectiveStockFunc = IncrementDefectiveStock
	SetGoodStockFunc            = SetGoodStock
	QueryStocksFunc             = QueryStocks
)

func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func ParseReturnCondition(condition string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(condition))
	for _, v := range ReturnConditions {
		if v == c {
			return c, nil
		}
	}
	return "", bizerror.NewValidationError("returnedPartCondition",
		fmt.Sprintf("'%s' is not one of %s", condition, strings.Join(ReturnConditions, ", ")))
}

// GetStock returns the good quantity of sku, zero for an unknown sku.
func GetStock(sku string, db *gorm.DB) (int, error) {
	var s PartStock
	if err := db.Where("sku = ? AND pool = ?", NormalizeSKU(sku), ConditionGood).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return s.Quantity, nil
}

// DecrementStock takes quantity units off the good pool of sku.
// The check and the decrement are one conditional statement, so a concurrent dispatch can never drive the pool negative.
func DecrementStock(sku string, quantity int, db *gorm.DB) error {
	if quantity <= 0 {
		return bizerror.NewValidationError("quantity", "must be positive")
	}
	sku = NormalizeSKU(sku)
	q := db.Model(&PartStock{}).Where("sku = ? AND pool = ? AND quantity >= ?", sku, ConditionGood, quantity).
		Updates(map[string]interface{}{"quantity": gorm.Expr("quantity - ?", quantity), "update_time": time.Now()})
	if q.Error != nil {
		return q.Error
	}
	if q.RowsAffected != 1 {
		available, err := GetStock(sku, db)
		if err != nil {
			return err
		}
		return &bizerror.OutOfStockError{SKU: sku, Requested: quantity, Available: available}
	}
	return nil
}

// IncrementDefectiveStock books returned units into the (sku, condition) pool, creating it on first use.
func IncrementDefectiveStock(sku, condition string, quantity int, db *gorm.DB) error {
	if quantity <= 0 {
		return bizerror.NewValidationError("quantity", "must be positive")
	}
	c, err := ParseReturnCondition(condition)
	if err != nil {
		return err
	}
	sku = NormalizeSKU(sku)
	now := time.Now()
	q := db.Model(&PartStock{}).Where("sku = ? AND pool = ?", sku, c).
		Updates(map[string]interface{}{"quantity": gorm.Expr("quantity + ?", quantity), "update_time": now})
	if q.Error != nil {
		return q.Error
	}
	if q.RowsAffected == 1 {
		return nil
	}
	return db.Create(&PartStock{SKU: sku, Condition: c, Quantity: quantity, UpdateTime: now}).Error
}

// SetGoodStock overwrites the good pool of a sku, used by stock administration.
func SetGoodStock(c *StockSetting, s *session.Session) (*PartStock, error) {
	if !s.Perms.HasRole(session.PermSupervisor) {
		return nil, bizerror.ErrForbidden
	}
	sku := NormalizeSKU(c.SKU)
	if sku == "" {
		return nil, bizerror.NewValidationError("sku", "must not be empty")
	}
	if c.Quantity < 0 {
		return nil, bizerror.NewValidationError("quantity", "must not be negative")
	}

	record := PartStock{SKU: sku, Condition: ConditionGood, PartName: c.PartName, Quantity: c.Quantity, UpdateTime: time.Now()}
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		var existing PartStock
		err := tx.Where("sku = ? AND pool = ?", sku, ConditionGood).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&record).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&PartStock{}).Where("sku = ? AND pool = ?", sku, ConditionGood).
			Updates(map[string]interface{}{"quantity": record.Quantity, "part_name": record.PartName, "update_time": record.UpdateTime}).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// QueryStocks lists every pool of sku, good pool first.
func QueryStocks(sku string, s *session.Session) ([]PartStock, error) {
	if !s.Perms.HasAnyRole(session.PermTechnician, session.PermSupervisor) {
		return nil, bizerror.ErrForbidden
	}
	var stocks []PartStock
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	if err := db.Where("sku = ?", NormalizeSKU(sku)).Order("pool = 'good' DESC").Order("pool ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}
