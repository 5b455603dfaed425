package user

import (
	"time"

	"loan-management/pkg/apperr"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// Roles lists the groups seeded at startup.
var Roles = []Role{RoleAdmin, RoleAgent, RoleCustomer}

var (
	ErrNotFound          = apperr.NotFound("user not found")
	ErrRoleNotFound      = apperr.NotFound("Specified role does not exist")
	ErrUsernameTaken     = apperr.Conflict("Username is already taken")
	ErrInvalidCredential = apperr.New(apperr.KindUnauthorized, "invalid username or password")
	ErrInvalidToken      = apperr.New(apperr.KindUnauthorized, "invalid token")
	ErrForbidden         = apperr.New(apperr.KindForbidden, "You do not have permission to perform this action")
)

// Table: auth_groups
type Group struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name Role   `gorm:"column:name;size:150;not null;uniqueIndex" json:"name"`
}

func (Group) TableName() string { return "auth_groups" }

// Table: users
type User struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;size:150;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:128;not null"`
	FirstName    string    `gorm:"column:first_name;size:150"`
	LastName     string    `gorm:"column:last_name;size:150"`
	Groups       []Group   `gorm:"many2many:user_groups;"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// InGroup reports membership using the preloaded Groups.
func (u *User) InGroup(role Role) bool {
	if u == nil {
		return false
	}
	for _, g := range u.Groups {
		if g.Name == role {
			return true
		}
	}
	return false
}

// Table: auth_tokens (one token per user)
type Token struct {
	Key       string    `gorm:"column:key;type:char(40);primaryKey"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Token) TableName() string { return "auth_tokens" }
