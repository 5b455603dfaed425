package loan

import (
	"context"
	"errors"
	"time"

	"loan-management/internal/domain/loan"
	"loan-management/internal/domain/uow"
	"loan-management/internal/domain/user"
	"loan-management/pkg/apperr"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxInterestRate = 100

// HasRoleFunc answers whether caller belongs to the named group.
type HasRoleFunc func(ctx context.Context, caller *user.User, role user.Role) (bool, error)

type Usecase struct {
	loans   loan.Repository
	states  loan.StateRepository
	users   user.Repository
	uow     uow.UnitOfWork
	hasRole HasRoleFunc
	now     func() time.Time
	log     *zap.Logger
}

func NewUsecase(
	loans loan.Repository,
	states loan.StateRepository,
	users user.Repository,
	tx uow.UnitOfWork,
	hasRole HasRoleFunc,
	log *zap.Logger,
) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		loans:   loans,
		states:  states,
		users:   users,
		uow:     tx,
		hasRole: hasRole,
		now:     time.Now,
		log:     log,
	}
}

// WithClock replaces the time source used for created_at.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (u *Usecase) require(ctx context.Context, caller *user.User, role user.Role) error {
	if caller == nil {
		return user.ErrForbidden
	}
	ok, err := u.hasRole(ctx, caller, role)
	if err != nil {
		return err
	}
	if !ok {
		return user.ErrForbidden
	}
	return nil
}

// stateRow resolves a catalog row. A missing row is a deployment fault, not a client error.
func stateRow(ctx context.Context, states loan.StateRepository, name loan.State) (*loan.StateRow, error) {
	row, err := states.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrStateMissing
		}
		return nil, err
	}
	return row, nil
}

func checkAmount(v *int64) error {
	if v != nil && *v <= 0 {
		return apperr.Validation("amount must be a positive integer")
	}
	return nil
}

func checkTenure(v *int64) error {
	if v != nil && *v <= 0 {
		return apperr.Validation("tenure must be a positive integer")
	}
	return nil
}

func checkInterestRate(v *int64) error {
	if v != nil && (*v < 0 || *v > maxInterestRate) {
		return apperr.Validation("interest_rate must be between 0 and 100")
	}
	return nil
}

func validateCreate(in CreateLoanInput) error {
	switch {
	case in.Amount == nil:
		return apperr.Validation("amount is required")
	case in.Tenure == nil:
		return apperr.Validation("tenure is required")
	case in.CustomerID == nil || *in.CustomerID == 0:
		return apperr.Validation("customer is required")
	}
	return errors.Join(checkAmount(in.Amount), checkTenure(in.Tenure), checkInterestRate(in.InterestRate))
}

func validateEdit(in EditLoanInput) error {
	return errors.Join(checkAmount(in.Amount), checkTenure(in.Tenure), checkInterestRate(in.InterestRate))
}

// Create registers a new loan request in the "new" state.
func (u *Usecase) Create(ctx context.Context, caller *user.User, in CreateLoanInput) (*LoanDTO, error) {
	if err := u.require(ctx, caller, user.RoleAgent); err != nil {
		return nil, err
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	newState, err := stateRow(ctx, u.states, loan.StateNew)
	if err != nil {
		return nil, err
	}

	customer, err := u.users.GetByID(ctx, *in.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrCustomer
		}
		return nil, err
	}

	rate := loan.DefaultInterestRate
	if in.InterestRate != nil {
		rate = *in.InterestRate
	}
	created := u.now().UTC().Truncate(time.Second)

	l := &loan.Loan{
		Amount:                   *in.Amount,
		InterestRate:             rate,
		Tenure:                   *in.Tenure,
		CustomerID:               customer.ID,
		Customer:                 *customer,
		CreatedAt:                created,
		ExpectedDateOfCompletion: loan.CompletionDate(created),
	}
	l.SetState(newState)

	if err := u.loans.Create(ctx, l); err != nil {
		u.log.Error("create loan", zap.Error(err))
		return nil, err
	}
	u.log.Info("loan created",
		zap.Uint64("loan_id", l.ID),
		zap.Uint64("customer_id", l.CustomerID),
		zap.Uint64("agent_id", caller.ID))
	return toDTO(l), nil
}

// Approve moves a loan to "approved". Rejected loans stay rejected; approving an
// approved loan returns it unchanged.
func (u *Usecase) Approve(ctx context.Context, caller *user.User, loanID uint64) (*LoanDTO, error) {
	if err := u.require(ctx, caller, user.RoleAdmin); err != nil {
		return nil, err
	}

	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		switch l.Status() {
		case loan.StateRejected:
			return loan.ErrRejected
		case loan.StateApproved:
			out = l
			return nil
		}
		approved, err := stateRow(ctx, r.States, loan.StateApproved)
		if err != nil {
			return err
		}
		l.SetState(approved)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	u.log.Info("loan approved", zap.Uint64("loan_id", out.ID), zap.Uint64("admin_id", caller.ID))
	return toDTO(out), nil
}

// Reject moves a pending loan to "rejected".
func (u *Usecase) Reject(ctx context.Context, caller *user.User, loanID uint64) (*LoanDTO, error) {
	if err := u.require(ctx, caller, user.RoleAdmin); err != nil {
		return nil, err
	}

	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status().Terminal() {
			return loan.ErrNotPending
		}
		rejected, err := stateRow(ctx, r.States, loan.StateRejected)
		if err != nil {
			return err
		}
		l.SetState(rejected)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	u.log.Info("loan rejected", zap.Uint64("loan_id", out.ID), zap.Uint64("admin_id", caller.ID))
	return toDTO(out), nil
}

// Edit applies a partial update to a loan that is still pending.
func (u *Usecase) Edit(ctx context.Context, caller *user.User, loanID uint64, in EditLoanInput) (*LoanDTO, error) {
	if err := u.require(ctx, caller, user.RoleAgent); err != nil {
		return nil, err
	}

	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status().Terminal() {
			return loan.ErrNotPending
		}
		if err := validateEdit(in); err != nil {
			return err
		}
		out = l
		if in.empty() {
			return nil
		}
		if in.Amount != nil {
			l.Amount = *in.Amount
		}
		if in.InterestRate != nil {
			l.InterestRate = *in.InterestRate
		}
		if in.Tenure != nil {
			l.Tenure = *in.Tenure
		}
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, notFound(err)
	}
	u.log.Info("loan edited", zap.Uint64("loan_id", out.ID), zap.Uint64("agent_id", caller.ID))
	return toDTO(out), nil
}

// Filter lists loans matching every supplied key. Customers only ever see their own loans.
func (u *Usecase) Filter(ctx context.Context, caller *user.User, in FilterInput) ([]LoanDTO, error) {
	if caller == nil {
		return nil, user.ErrForbidden
	}

	f := loan.Filter{Tenure: in.Tenure, CreatedAt: in.CreatedAt}
	if in.State != nil {
		name, ok := loan.ParseState(*in.State)
		if !ok {
			return nil, apperr.Validation("unknown state " + *in.State)
		}
		row, err := stateRow(ctx, u.states, name)
		if err != nil {
			return nil, err
		}
		f.StateID = &row.ID
	}

	isCustomer, err := u.hasRole(ctx, caller, user.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if isCustomer {
		id := caller.ID
		f.CustomerID = &id
	}

	list, err := u.loans.Filter(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, loan.ErrNoMatch
	}
	return toDTOs(list), nil
}

// Get returns one loan; a customer asking for someone else's loan gets not-found.
func (u *Usecase) Get(ctx context.Context, caller *user.User, loanID uint64) (*LoanDTO, error) {
	if caller == nil {
		return nil, user.ErrForbidden
	}
	l, err := u.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, notFound(err)
	}
	isCustomer, err := u.hasRole(ctx, caller, user.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if isCustomer && l.CustomerID != caller.ID {
		return nil, loan.ErrNotFound
	}
	return toDTO(l), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loan.ErrNotFound
	}
	return err
}
