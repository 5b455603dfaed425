package mysql

import (
	"context"

	loanDomain "loan-management/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *LoanRepository) Tx(ctx context.Context, fn func(repo loanDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LoanRepository{db: tx})
	})
}

func (r *LoanRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("State").
		Preload("Customer.Groups")
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	// associations are referenced, never written through the loan
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.withRefs(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.withRefs(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) Filter(ctx context.Context, f loanDomain.Filter) ([]loanDomain.Loan, error) {
	q := r.withRefs(ctx)
	if f.Tenure != nil {
		q = q.Where("tenure = ?", *f.Tenure)
	}
	if f.CreatedAt != nil {
		q = q.Where("created_at = ?", f.CreatedAt.UTC())
	}
	if f.StateID != nil {
		q = q.Where("state_id = ?", *f.StateID)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	var out []loanDomain.Loan
	res := q.Order("id ASC").Find(&out)
	return out, res.Error
}
