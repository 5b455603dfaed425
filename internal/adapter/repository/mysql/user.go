package mysql

import (
	"context"

	userDomain "loan-management/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Omit("Groups").Create(u).Error
}

func (r *UserRepository) Save(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Omit("Groups").Save(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Preload("Groups").Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Preload("Groups").Where("username = ?", username).First(&out)
	return &out, res.Error
}

func (r *UserRepository) List(ctx context.Context) ([]userDomain.User, error) {
	var out []userDomain.User
	res := r.db.WithContext(ctx).Preload("Groups").Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *UserRepository) GetGroupByName(ctx context.Context, name userDomain.Role) (*userDomain.Group, error) {
	var out userDomain.Group
	res := r.db.WithContext(ctx).Where("name = ?", name).First(&out)
	return &out, res.Error
}

func (r *UserRepository) AddToGroup(ctx context.Context, u *userDomain.User, g *userDomain.Group) error {
	return r.db.WithContext(ctx).Model(u).Association("Groups").Append(g)
}

func (r *UserRepository) HasRole(ctx context.Context, userID uint64, role userDomain.Role) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Table("user_groups").
		Joins("JOIN auth_groups ON auth_groups.id = user_groups.group_id").
		Where("user_groups.user_id = ? AND auth_groups.name = ?", userID, role).
		Count(&n)
	return n > 0, res.Error
}
