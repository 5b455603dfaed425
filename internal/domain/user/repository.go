package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	// GetByID preloads Groups.
	GetByID(ctx context.Context, id uint64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)

	GetGroupByName(ctx context.Context, name Role) (*Group, error)
	AddToGroup(ctx context.Context, u *User, g *Group) error
	HasRole(ctx context.Context, userID uint64, role Role) (bool, error)
}

type TokenRepository interface {
	Create(ctx context.Context, t *Token) error
	GetByUserID(ctx context.Context, userID uint64) (*Token, error)
	GetByKey(ctx context.Context, key string) (*Token, error)
}
