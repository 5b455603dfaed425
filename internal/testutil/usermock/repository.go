package usermock

import (
	"context"

	domain "loan-management/internal/domain/user"
)

var (
	_ domain.Repository      = (*Repo)(nil)
	_ domain.TokenRepository = (*TokenRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn         func(ctx context.Context, u *domain.User) error
	SaveFn           func(ctx context.Context, u *domain.User) error
	GetByIDFn        func(ctx context.Context, id uint64) (*domain.User, error)
	GetByUsernameFn  func(ctx context.Context, username string) (*domain.User, error)
	ListFn           func(ctx context.Context) ([]domain.User, error)
	GetGroupByNameFn func(ctx context.Context, name domain.Role) (*domain.Group, error)
	AddToGroupFn     func(ctx context.Context, u *domain.User, g *domain.Group) error
	HasRoleFn        func(ctx context.Context, userID uint64, role domain.Role) (bool, error)
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, u *domain.User) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) GetGroupByName(ctx context.Context, name domain.Role) (*domain.Group, error) {
	if m.GetGroupByNameFn != nil {
		return m.GetGroupByNameFn(ctx, name)
	}
	return nil, context.Canceled
}

func (m *Repo) AddToGroup(ctx context.Context, u *domain.User, g *domain.Group) error {
	if m.AddToGroupFn != nil {
		return m.AddToGroupFn(ctx, u, g)
	}
	return nil
}

func (m *Repo) HasRole(ctx context.Context, userID uint64, role domain.Role) (bool, error) {
	if m.HasRoleFn != nil {
		return m.HasRoleFn(ctx, userID, role)
	}
	return false, nil
}

// Roles returns a HasRoleFn backed by a fixed user id → role table.
func Roles(table map[uint64]domain.Role) func(context.Context, uint64, domain.Role) (bool, error) {
	return func(_ context.Context, userID uint64, role domain.Role) (bool, error) {
		return table[userID] == role, nil
	}
}

// TokenRepo is a function-backed mock that satisfies domain.TokenRepository.
type TokenRepo struct {
	CreateFn      func(ctx context.Context, t *domain.Token) error
	GetByUserIDFn func(ctx context.Context, userID uint64) (*domain.Token, error)
	GetByKeyFn    func(ctx context.Context, key string) (*domain.Token, error)
}

func (m *TokenRepo) Create(ctx context.Context, t *domain.Token) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *TokenRepo) GetByUserID(ctx context.Context, userID uint64) (*domain.Token, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *TokenRepo) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	if m.GetByKeyFn != nil {
		return m.GetByKeyFn(ctx, key)
	}
	return nil, context.Canceled
}
