package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "loan-management/internal/domain/loan"
	"loan-management/internal/domain/user"

	"gorm.io/gorm"
)

func TestCreateAndGetByID(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLoanRepository(gdb)
	ctx := context.Background()

	cust := mustUser(t, gdb, "cust1", user.RoleCustomer)
	created := time.Date(2025, 1, 31, 9, 30, 0, 0, time.UTC)
	l := makeLoan(t, gdb, cust, domain.StateNew, 12, created)
	if l.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status() != domain.StateNew {
		t.Errorf("state = %q, want new", got.Status())
	}
	if got.Customer.Username != "cust1" || len(got.Customer.Groups) != 1 {
		t.Errorf("customer not preloaded: %+v", got.Customer)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created)
	}
	if got.ExpectedDateOfCompletion.Format("2006-01-02") != "2025-03-02" {
		t.Errorf("completion = %v, want 2025-03-02", got.ExpectedDateOfCompletion)
	}
}

func TestSaveUpdates(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLoanRepository(gdb)
	ctx := context.Background()

	cust := mustUser(t, gdb, "cust1", user.RoleCustomer)
	l := makeLoan(t, gdb, cust, domain.StateNew, 12, time.Now())

	l.Tenure = 24
	l.SetState(mustState(t, gdb, domain.StateApproved))
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Tenure != 24 || got.Status() != domain.StateApproved {
		t.Errorf("not updated: tenure=%d state=%s", got.Tenure, got.Status())
	}
	if got.Amount != 1000 {
		t.Errorf("amount changed: %d", got.Amount)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLoanRepository(gdb)

	if _, err := repo.GetByID(context.Background(), 999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.GetByIDForUpdate(context.Background(), 999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for update lookup, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLoanRepository(gdb)
	ctx := context.Background()

	c1 := mustUser(t, gdb, "c1", user.RoleCustomer)
	c2 := mustUser(t, gdb, "c2", user.RoleCustomer)
	t0 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	l1 := makeLoan(t, gdb, c1, domain.StateNew, 12, t0)
	l2 := makeLoan(t, gdb, c1, domain.StateApproved, 24, t0.Add(time.Hour))
	l3 := makeLoan(t, gdb, c2, domain.StateNew, 12, t0.Add(2*time.Hour))

	i64 := func(v int64) *int64 { return &v }
	u64 := func(v uint64) *uint64 { return &v }
	ts := func(v time.Time) *time.Time { return &v }
	newID := mustState(t, gdb, domain.StateNew).ID

	tests := []struct {
		name string
		f    domain.Filter
		want []uint64
	}{
		{"no keys", domain.Filter{}, []uint64{l1.ID, l2.ID, l3.ID}},
		{"tenure", domain.Filter{Tenure: i64(12)}, []uint64{l1.ID, l3.ID}},
		{"state", domain.Filter{StateID: u64(newID)}, []uint64{l1.ID, l3.ID}},
		{"created_at exact", domain.Filter{CreatedAt: ts(t0.Add(time.Hour))}, []uint64{l2.ID}},
		{"customer", domain.Filter{CustomerID: u64(c1.ID)}, []uint64{l1.ID, l2.ID}},
		{"and of keys", domain.Filter{Tenure: i64(12), CustomerID: u64(c2.ID)}, []uint64{l3.ID}},
		{"no match", domain.Filter{Tenure: i64(36)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Filter(ctx, tt.f)
			if err != nil {
				t.Fatalf("Filter: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d rows, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Fatalf("row %d: id=%d want %d", i, got[i].ID, tt.want[i])
				}
				if got[i].State.Name == "" {
					t.Fatalf("state not preloaded on row %d", i)
				}
			}
		})
	}
}

func TestTx_Rollback(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLoanRepository(gdb)
	ctx := context.Background()

	cust := mustUser(t, gdb, "cust1", user.RoleCustomer)
	newState := mustState(t, gdb, domain.StateNew)
	wantErr := errors.New("boom")

	var id uint64
	_ = repo.Tx(ctx, func(r domain.Repository) error {
		l := &domain.Loan{Amount: 1, InterestRate: 10, Tenure: 1, CustomerID: cust.ID,
			CreatedAt: time.Now().UTC(), ExpectedDateOfCompletion: time.Now().UTC()}
		l.SetState(newState)
		if err := r.Create(ctx, l); err != nil {
			return err
		}
		id = l.ID
		return wantErr // force rollback
	})

	if _, err := repo.GetByID(ctx, id); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found after rollback, got %v", err)
	}
}

func TestStateRepository_GetByName(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewStateRepository(gdb)
	ctx := context.Background()

	row, err := repo.GetByName(ctx, domain.StateRejected)
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if row.Name != domain.StateRejected || row.ID == 0 {
		t.Fatalf("unexpected row %+v", row)
	}

	if _, err := repo.GetByName(ctx, "disbursed"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
