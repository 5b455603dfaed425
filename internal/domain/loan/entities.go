package loan

import (
	"time"

	"loan-management/internal/domain/user"
	"loan-management/pkg/apperr"
)

type State string

const (
	StateNew      State = "new"
	StateApproved State = "approved"
	StateRejected State = "rejected"
)

// States lists the catalog rows seeded at startup, with their descriptions.
var States = map[State]string{
	StateNew:      "Loan request submitted by an agent, pending review",
	StateApproved: "Loan request approved by an admin",
	StateRejected: "Loan request rejected by an admin",
}

// ParseState accepts only names present in the catalog.
func ParseState(name string) (State, bool) {
	s := State(name)
	_, ok := States[s]
	return s, ok
}

// Terminal reports whether no further transition or edit is allowed from s.
func (s State) Terminal() bool { return s == StateApproved || s == StateRejected }

const (
	DefaultInterestRate int64 = 10
	// CompletionOffset is added to the creation date to get the expected completion date.
	CompletionOffset = 30 * 24 * time.Hour
)

var (
	ErrNotFound     = apperr.NotFound("Loan with given id not found")
	ErrRejected     = apperr.Conflict("Loan was Rejected")
	ErrNotPending   = apperr.Conflict("Loan was Approved or Rejected and cannot be modified")
	ErrStateMissing = apperr.New(apperr.KindInconsistent, "loan state catalog is incomplete")
	ErrNoMatch      = apperr.NotFound("No data matched given filters")
	ErrCustomer     = apperr.Validation("customer not found")
)

// Table: states. Storage-side shape of State; domain code compares Name.
type StateRow struct {
	ID          uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name        State   `gorm:"column:name;size:10;not null;uniqueIndex"`
	Description *string `gorm:"column:description;size:100"`
}

func (StateRow) TableName() string { return "states" }

// Table: loans
type Loan struct {
	ID                       uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Amount                   int64     `gorm:"column:amount;not null"`
	InterestRate             int64     `gorm:"column:interest_rate;not null;default:10"`
	Tenure                   int64     `gorm:"column:tenure;not null;index"`
	StateID                  uint64    `gorm:"column:state_id;not null;index"`
	State                    StateRow  `gorm:"foreignKey:StateID"`
	CustomerID               uint64    `gorm:"column:customer_id;not null;index"`
	Customer                 user.User `gorm:"foreignKey:CustomerID"`
	CreatedAt                time.Time `gorm:"column:created_at;not null;index"`
	ExpectedDateOfCompletion time.Time `gorm:"column:expected_date_of_completion;type:date;not null"`
}

func (Loan) TableName() string { return "loans" }

// Status is the loan's position in the approval workflow.
func (l *Loan) Status() State { return l.State.Name }

// SetState points the loan at a catalog row.
func (l *Loan) SetState(row *StateRow) {
	l.StateID = row.ID
	l.State = *row
}

// CompletionDate truncates created to its UTC date and adds CompletionOffset.
func CompletionDate(created time.Time) time.Time {
	y, m, d := created.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(CompletionOffset)
}

// Filter is an AND of exact-match conditions; nil fields impose no constraint.
type Filter struct {
	Tenure     *int64
	CreatedAt  *time.Time
	StateID    *uint64
	CustomerID *uint64
}
