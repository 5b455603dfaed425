package loanmock

import (
	"context"

	domain "loan-management/internal/domain/loan"

	"gorm.io/gorm"
)

// Compile-time checks
var (
	_ domain.Repository      = (*Repo)(nil)
	_ domain.StateRepository = (*StateRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset funcs return context.Canceled for lookups and nil for writes.
type Repo struct {
	CreateFn           func(ctx context.Context, l *domain.Loan) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Loan, error)
	SaveFn             func(ctx context.Context, l *domain.Loan) error
	FilterFn           func(ctx context.Context, f domain.Filter) ([]domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) Filter(ctx context.Context, f domain.Filter) ([]domain.Loan, error) {
	if m.FilterFn != nil {
		return m.FilterFn(ctx, f)
	}
	return nil, context.Canceled
}

// StateRepo mocks the state catalog.
type StateRepo struct {
	GetByNameFn func(ctx context.Context, name domain.State) (*domain.StateRow, error)
}

func (m *StateRepo) GetByName(ctx context.Context, name domain.State) (*domain.StateRow, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	return nil, context.Canceled
}

// Catalog returns a StateRepo serving the full seeded catalog with ids 1..3.
func Catalog() *StateRepo {
	rows := map[domain.State]uint64{
		domain.StateNew:      1,
		domain.StateApproved: 2,
		domain.StateRejected: 3,
	}
	return &StateRepo{
		GetByNameFn: func(_ context.Context, name domain.State) (*domain.StateRow, error) {
			id, ok := rows[name]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return &domain.StateRow{ID: id, Name: name}, nil
		},
	}
}
