package account

import (
	"context"
	"errors"
	"strings"

	"loan-management/internal/domain/uow"
	"loan-management/internal/domain/user"
	"loan-management/pkg/apperr"
	"loan-management/pkg/id"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

var errShortPassword = apperr.New(apperr.KindLengthRequired, "Password must be at least 6 characters long")

type Usecase struct {
	users    user.Repository
	tokens   user.TokenRepository
	uow      uow.UnitOfWork
	log      *zap.Logger
	hashCost int
}

func NewUsecase(users user.Repository, tokens user.TokenRepository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{users: users, tokens: tokens, uow: tx, log: log, hashCost: bcrypt.DefaultCost}
}

func blank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

// Register validates the form in a fixed order, then creates the user, its group
// membership and its token in one transaction.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterDTO, error) {
	switch {
	case blank(in.Username):
		return nil, apperr.Validation("Blank username field")
	case blank(in.Password):
		return nil, apperr.Validation("Blank password field")
	case blank(in.FirstName):
		return nil, apperr.Validation("Blank first_name field")
	case blank(in.LastName):
		return nil, apperr.Validation("Blank last_name field")
	case len(*in.Password) < minPasswordLen:
		return nil, errShortPassword
	}
	username := strings.TrimSpace(*in.Username)

	switch _, err := u.users.GetByUsername(ctx, username); {
	case err == nil:
		return nil, user.ErrUsernameTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if blank(in.Role) {
		return nil, apperr.Validation("Blank role field")
	}
	group, err := u.users.GetGroupByName(ctx, user.Role(strings.TrimSpace(*in.Role)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrRoleNotFound
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), u.hashCost)
	if err != nil {
		return nil, err
	}

	var out *RegisterDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		nu := &user.User{
			Username:     username,
			PasswordHash: string(hash),
			FirstName:    strings.TrimSpace(*in.FirstName),
			LastName:     strings.TrimSpace(*in.LastName),
		}
		if err := r.Users.Create(ctx, nu); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return user.ErrUsernameTaken
			}
			return err
		}
		if err := r.Users.AddToGroup(ctx, nu, group); err != nil {
			return err
		}
		tok := &user.Token{Key: id.NewToken(), UserID: nu.ID}
		if err := r.Tokens.Create(ctx, tok); err != nil {
			return err
		}
		nu.Groups = []user.Group{*group}
		out = &RegisterDTO{User: ToUserDTO(nu), Token: tok.Key}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("user registered",
		zap.Uint64("user_id", out.User.ID),
		zap.String("role", string(group.Name)))
	return out, nil
}

// Login checks the password and returns the user's token, issuing one if needed.
func (u *Usecase) Login(ctx context.Context, username, password string) (*TokenDTO, error) {
	usr, err := u.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrInvalidCredential
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, user.ErrInvalidCredential
	}

	tok, err := u.tokens.GetByUserID(ctx, usr.ID)
	switch {
	case err == nil:
		return &TokenDTO{Token: tok.Key}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	tok = &user.Token{Key: id.NewToken(), UserID: usr.ID}
	if err := u.tokens.Create(ctx, tok); err != nil {
		return nil, err
	}
	return &TokenDTO{Token: tok.Key}, nil
}

// Authenticate resolves a token key to its user, groups preloaded.
func (u *Usecase) Authenticate(ctx context.Context, key string) (*user.User, error) {
	if key == "" {
		return nil, user.ErrInvalidToken
	}
	tok, err := u.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrInvalidToken
		}
		return nil, err
	}
	usr, err := u.users.GetByID(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrInvalidToken
		}
		return nil, err
	}
	return usr, nil
}

// HasRole is the capability predicate handed to the loan workflow.
func (u *Usecase) HasRole(ctx context.Context, caller *user.User, role user.Role) (bool, error) {
	if caller == nil {
		return false, nil
	}
	return u.users.HasRole(ctx, caller.ID, role)
}

func (u *Usecase) requireStaff(ctx context.Context, caller *user.User) error {
	for _, role := range []user.Role{user.RoleAdmin, user.RoleAgent} {
		ok, err := u.HasRole(ctx, caller, role)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return user.ErrForbidden
}

func (u *Usecase) ListUsers(ctx context.Context, caller *user.User) ([]UserDTO, error) {
	if err := u.requireStaff(ctx, caller); err != nil {
		return nil, err
	}
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, ToUserDTO(&users[i]))
	}
	return out, nil
}

func (u *Usecase) GetUser(ctx context.Context, caller *user.User, userID uint64) (*UserDTO, error) {
	if err := u.requireStaff(ctx, caller); err != nil {
		return nil, err
	}
	usr, err := u.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(usr)
	return &dto, nil
}

// UpdateUser applies only the fields present in the input.
func (u *Usecase) UpdateUser(ctx context.Context, caller *user.User, userID uint64, in UpdateUserInput) (*UserDTO, error) {
	if err := u.requireStaff(ctx, caller); err != nil {
		return nil, err
	}
	usr, err := u.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, apperr.Validation("Blank username field")
		}
		if name != usr.Username {
			switch _, err := u.users.GetByUsername(ctx, name); {
			case err == nil:
				return nil, user.ErrUsernameTaken
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return nil, err
			}
			usr.Username = name
		}
	}
	if in.FirstName != nil {
		usr.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		usr.LastName = strings.TrimSpace(*in.LastName)
	}

	if err := u.users.Save(ctx, usr); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, user.ErrUsernameTaken
		}
		return nil, err
	}
	dto := ToUserDTO(usr)
	return &dto, nil
}

func (u *Usecase) getUser(ctx context.Context, userID uint64) (*user.User, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return usr, nil
}
