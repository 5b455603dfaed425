package mysql

import (
	"context"

	loanDomain "loan-management/internal/domain/loan"

	"gorm.io/gorm"
)

type StateRepository struct{ db *gorm.DB }

func NewStateRepository(db *gorm.DB) *StateRepository { return &StateRepository{db: db} }

func (r *StateRepository) GetByName(ctx context.Context, name loanDomain.State) (*loanDomain.StateRow, error) {
	var out loanDomain.StateRow
	res := r.db.WithContext(ctx).Where("name = ?", name).First(&out)
	return &out, res.Error
}
