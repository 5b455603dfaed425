package db

import (
	"loan-management/internal/domain/loan"
	"loan-management/internal/domain/user"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&loan.StateRow{},
		&user.Group{},
		&user.User{},
		&user.Token{},
		&loan.Loan{},
	)
}

// Seed inserts the state catalog and the role groups. Safe to run on every start.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for name, desc := range loan.States {
			d := desc
			row := loan.StateRow{Name: name}
			if err := tx.Where(loan.StateRow{Name: name}).
				Attrs(loan.StateRow{Description: &d}).
				FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}
		for _, role := range user.Roles {
			g := user.Group{Name: role}
			if err := tx.Where(user.Group{Name: role}).FirstOrCreate(&g).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
