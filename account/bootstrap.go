package account

import (
	"errors"
	"itad/persistence"
	"itad/session"
	"os"

	"github.com/jinzhu/gorm"
)

// DefaultSecurityConfiguration makes sure the initial supervisor account exists.
func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	return db.Transaction(func(tx *gorm.DB) error {
		admin := Technician{}
		err := tx.Where(&Technician{ID: 1}).First(&admin).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		initialAdminPassword := os.ExpandEnv("${INITIAL_ADMIN_PASSWORD}")
		if initialAdminPassword == "" {
			initialAdminPassword = "admin123"
		}
		return tx.Save(&Technician{ID: 1, Name: "admin", Nickname: "Workshop Supervisor",
			Secret: HashSha256(initialAdminPassword), Role: session.PermSupervisor}).Error
	})
}
