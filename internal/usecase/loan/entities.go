package loan

import (
	"time"

	"loan-management/internal/domain/loan"
	"loan-management/internal/usecase/account"
)

const dateLayout = "2006-01-02"

// CreateLoanInput: nil means the field was absent from the request.
type CreateLoanInput struct {
	Amount       *int64
	InterestRate *int64
	Tenure       *int64
	CustomerID   *uint64
}

// EditLoanInput is a merge patch; only non-nil fields are applied.
type EditLoanInput struct {
	Amount       *int64
	InterestRate *int64
	Tenure       *int64
}

func (in EditLoanInput) empty() bool {
	return in.Amount == nil && in.InterestRate == nil && in.Tenure == nil
}

type FilterInput struct {
	Tenure    *int64
	CreatedAt *time.Time
	State     *string
}

type StateDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type LoanDTO struct {
	ID                       uint64          `json:"id"`
	Amount                   int64           `json:"amount"`
	InterestRate             int64           `json:"interest_rate"`
	Tenure                   int64           `json:"tenure"`
	State                    StateDTO        `json:"state"`
	Customer                 account.UserDTO `json:"customer"`
	CreatedAt                time.Time       `json:"created_at"`
	ExpectedDateOfCompletion string          `json:"expected_date_of_completion"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		ID:                       l.ID,
		Amount:                   l.Amount,
		InterestRate:             l.InterestRate,
		Tenure:                   l.Tenure,
		State:                    StateDTO{ID: l.State.ID, Name: string(l.State.Name)},
		Customer:                 account.ToUserDTO(&l.Customer),
		CreatedAt:                l.CreatedAt.UTC(),
		ExpectedDateOfCompletion: l.ExpectedDateOfCompletion.Format(dateLayout),
	}
}

func toDTOs(ls []loan.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out
}
