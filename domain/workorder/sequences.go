package workorder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
)

var NumberPrefix = "WO"

func FormatNumber(prefix string, value int64) string {
	return fmt.Sprintf("%s-%06d", prefix, value)
}

// NextWorkOrderNumber consumes the next number of prefix.
// Numbers are monotonic per prefix, a rolled back transaction may leave a gap.
func NextWorkOrderNumber(prefix string, tx *gorm.DB) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", errors.New("work order number prefix is empty")
	}

	seq := WorkOrderSequence{}
	err := tx.Where(&WorkOrderSequence{Prefix: prefix}).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = WorkOrderSequence{Prefix: prefix, NextValue: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	// consume current value
	number := FormatNumber(prefix, seq.NextValue)
	// generate next value
	db := tx.Model(&WorkOrderSequence{}).Where("prefix = ? AND next_value = ?", prefix, seq.NextValue).
		Update("next_value", seq.NextValue+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", errors.New("concurrent modification")
	}
	return number, nil
}
