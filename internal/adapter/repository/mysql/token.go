package mysql

import (
	"context"

	userDomain "loan-management/internal/domain/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TokenRepository struct{ db *gorm.DB }

func NewTokenRepository(db *gorm.DB) *TokenRepository { return &TokenRepository{db: db} }

func (r *TokenRepository) Create(ctx context.Context, t *userDomain.Token) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TokenRepository) GetByUserID(ctx context.Context, userID uint64) (*userDomain.Token, error) {
	var out userDomain.Token
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	return &out, res.Error
}

func (r *TokenRepository) GetByKey(ctx context.Context, key string) (*userDomain.Token, error) {
	var out userDomain.Token
	res := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		First(&out)
	return &out, res.Error
}
