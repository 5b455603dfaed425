package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	// GetByID preloads State and Customer.
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByIDForUpdate locks the row; only meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	Filter(ctx context.Context, f Filter) ([]Loan, error)
}

// StateRepository resolves State names to catalog rows.
type StateRepository interface {
	GetByName(ctx context.Context, name State) (*StateRow, error)
}
