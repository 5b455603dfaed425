package uow

import (
	"context"

	"loan-management/internal/domain/loan"
	"loan-management/internal/domain/user"
)

type Repos struct {
	Loans  loan.Repository
	States loan.StateRepository
	Users  user.Repository
	Tokens user.TokenRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
