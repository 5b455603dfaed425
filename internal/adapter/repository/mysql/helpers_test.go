package mysql

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"loan-management/internal/domain/loan"
	"loan-management/internal/domain/user"
	"loan-management/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates a file-backed sqlite DB with the full schema and seed rows.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(gdb); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func mustState(t *testing.T, gdb *gorm.DB, name loan.State) *loan.StateRow {
	t.Helper()
	var row loan.StateRow
	if err := gdb.Where("name = ?", name).First(&row).Error; err != nil {
		t.Fatalf("state %s: %v", name, err)
	}
	return &row
}

func mustUser(t *testing.T, gdb *gorm.DB, username string, role user.Role) *user.User {
	t.Helper()
	u := &user.User{Username: username, PasswordHash: "x", FirstName: "F", LastName: "L"}
	repo := NewUserRepository(gdb)
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	var g user.Group
	if err := gdb.Where("name = ?", role).First(&g).Error; err != nil {
		t.Fatalf("group %s: %v", role, err)
	}
	if err := repo.AddToGroup(context.Background(), u, &g); err != nil {
		t.Fatalf("add to group: %v", err)
	}
	return u
}

func makeLoan(t *testing.T, gdb *gorm.DB, customer *user.User, state loan.State, tenure int64, created time.Time) *loan.Loan {
	t.Helper()
	l := &loan.Loan{
		Amount:                   1000,
		InterestRate:             10,
		Tenure:                   tenure,
		CustomerID:               customer.ID,
		CreatedAt:                created.UTC(),
		ExpectedDateOfCompletion: loan.CompletionDate(created),
	}
	l.SetState(mustState(t, gdb, state))
	if err := NewLoanRepository(gdb).Create(context.Background(), l); err != nil {
		t.Fatalf("create loan: %v", err)
	}
	return l
}
