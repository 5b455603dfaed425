package account

import (
	"context"
	"testing"

	"loan-management/internal/domain/uow"
	"loan-management/internal/domain/user"
	"loan-management/internal/testutil/uowmock"
	"loan-management/internal/testutil/usermock"
	"loan-management/pkg/apperr"
	"loan-management/pkg/id"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func ptr(s string) *string { return &s }

// store is an in-memory user/token backend behind the function-backed mocks.
type store struct {
	users  map[uint64]*user.User
	tokens map[string]*user.Token
	groups map[user.Role]*user.Group
	nextID uint64
}

func newStore() *store {
	s := &store{
		users:  map[uint64]*user.User{},
		tokens: map[string]*user.Token{},
		groups: map[user.Role]*user.Group{},
		nextID: 1,
	}
	for i, r := range user.Roles {
		s.groups[r] = &user.Group{ID: uint64(i + 1), Name: r}
	}
	return s
}

func (s *store) repos() (*usermock.Repo, *usermock.TokenRepo) {
	users := &usermock.Repo{
		CreateFn: func(_ context.Context, u *user.User) error {
			u.ID = s.nextID
			s.nextID++
			cp := *u
			s.users[u.ID] = &cp
			return nil
		},
		SaveFn: func(_ context.Context, u *user.User) error {
			cp := *u
			s.users[u.ID] = &cp
			return nil
		},
		GetByIDFn: func(_ context.Context, id uint64) (*user.User, error) {
			u, ok := s.users[id]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			cp := *u
			return &cp, nil
		},
		GetByUsernameFn: func(_ context.Context, name string) (*user.User, error) {
			for _, u := range s.users {
				if u.Username == name {
					cp := *u
					return &cp, nil
				}
			}
			return nil, gorm.ErrRecordNotFound
		},
		ListFn: func(context.Context) ([]user.User, error) {
			out := make([]user.User, 0, len(s.users))
			for id := uint64(1); id < s.nextID; id++ {
				if u, ok := s.users[id]; ok {
					out = append(out, *u)
				}
			}
			return out, nil
		},
		GetGroupByNameFn: func(_ context.Context, name user.Role) (*user.Group, error) {
			g, ok := s.groups[name]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return g, nil
		},
		AddToGroupFn: func(_ context.Context, u *user.User, g *user.Group) error {
			s.users[u.ID].Groups = append(s.users[u.ID].Groups, *g)
			return nil
		},
		HasRoleFn: func(_ context.Context, userID uint64, role user.Role) (bool, error) {
			u, ok := s.users[userID]
			return ok && u.InGroup(role), nil
		},
	}
	tokens := &usermock.TokenRepo{
		CreateFn: func(_ context.Context, t *user.Token) error {
			cp := *t
			s.tokens[t.Key] = &cp
			return nil
		},
		GetByUserIDFn: func(_ context.Context, userID uint64) (*user.Token, error) {
			for _, t := range s.tokens {
				if t.UserID == userID {
					return t, nil
				}
			}
			return nil, gorm.ErrRecordNotFound
		},
		GetByKeyFn: func(_ context.Context, key string) (*user.Token, error) {
			t, ok := s.tokens[key]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return t, nil
		},
	}
	return users, tokens
}

func newTestUsecase(s *store) *Usecase {
	users, tokens := s.repos()
	uc := NewUsecase(users, tokens, uowmock.Passthrough(uow.Repos{Users: users, Tokens: tokens}), nil)
	uc.hashCost = bcrypt.MinCost
	return uc
}

func validForm() RegisterInput {
	return RegisterInput{
		Username:  ptr("jdoe"),
		Password:  ptr("secret1"),
		FirstName: ptr("John"),
		LastName:  ptr("Doe"),
		Role:      ptr("agent"),
	}
}

func TestRegister_Success(t *testing.T) {
	s := newStore()
	uc := newTestUsecase(s)

	out, err := uc.Register(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, "jdoe", out.User.Username)
	assert.Equal(t, []string{"agent"}, out.User.Groups)
	assert.Len(t, out.Token, id.TokenLen)

	stored := s.users[out.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
	assert.True(t, stored.InGroup(user.RoleAgent))
	assert.Equal(t, out.User.ID, s.tokens[out.Token].UserID)
}

func TestRegister_ValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		kind   apperr.Kind
		msg    string
	}{
		{name: "blank username", mutate: func(in *RegisterInput) { in.Username = ptr(" ") }, kind: apperr.KindValidation, msg: "Blank username field"},
		{name: "missing password", mutate: func(in *RegisterInput) { in.Password = nil }, kind: apperr.KindValidation, msg: "Blank password field"},
		{name: "blank first name", mutate: func(in *RegisterInput) { in.FirstName = ptr("") }, kind: apperr.KindValidation, msg: "Blank first_name field"},
		{name: "blank last name", mutate: func(in *RegisterInput) { in.LastName = nil }, kind: apperr.KindValidation, msg: "Blank last_name field"},
		{name: "short password", mutate: func(in *RegisterInput) { in.Password = ptr("12345") }, kind: apperr.KindLengthRequired},
		{name: "short password beats blank role", mutate: func(in *RegisterInput) { in.Password = ptr("123"); in.Role = nil }, kind: apperr.KindLengthRequired},
		{name: "taken username", mutate: func(in *RegisterInput) { in.Username = ptr("taken") }, kind: apperr.KindConflict, msg: user.ErrUsernameTaken.Msg},
		{name: "taken beats unknown role", mutate: func(in *RegisterInput) { in.Username = ptr("taken"); in.Role = ptr("boss") }, kind: apperr.KindConflict},
		{name: "blank role", mutate: func(in *RegisterInput) { in.Role = ptr("") }, kind: apperr.KindValidation, msg: "Blank role field"},
		{name: "unknown role", mutate: func(in *RegisterInput) { in.Role = ptr("boss") }, kind: apperr.KindNotFound, msg: user.ErrRoleNotFound.Msg},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore()
			s.users[99] = &user.User{ID: 99, Username: "taken"}
			uc := newTestUsecase(s)

			in := validForm()
			tc.mutate(&in)
			_, err := uc.Register(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			if tc.msg != "" {
				assert.Equal(t, tc.msg, err.Error())
			}
			assert.Len(t, s.users, 1, "no user may be created on error")
			assert.Empty(t, s.tokens)
		})
	}
}

func TestLogin(t *testing.T) {
	s := newStore()
	uc := newTestUsecase(s)
	reg, err := uc.Register(context.Background(), validForm())
	require.NoError(t, err)

	tok, err := uc.Login(context.Background(), "jdoe", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.Token, tok.Token, "existing token is reused")

	_, err = uc.Login(context.Background(), "jdoe", "wrong-password")
	require.ErrorIs(t, err, user.ErrInvalidCredential)

	_, err = uc.Login(context.Background(), "nobody", "secret1")
	require.ErrorIs(t, err, user.ErrInvalidCredential)
}

func TestLogin_IssuesTokenWhenMissing(t *testing.T) {
	s := newStore()
	uc := newTestUsecase(s)
	reg, err := uc.Register(context.Background(), validForm())
	require.NoError(t, err)
	delete(s.tokens, reg.Token)

	tok, err := uc.Login(context.Background(), "jdoe", "secret1")
	require.NoError(t, err)
	assert.Len(t, tok.Token, id.TokenLen)
	assert.NotEqual(t, reg.Token, tok.Token)
	assert.Equal(t, reg.User.ID, s.tokens[tok.Token].UserID)
}

func TestAuthenticate(t *testing.T) {
	s := newStore()
	uc := newTestUsecase(s)
	reg, err := uc.Register(context.Background(), validForm())
	require.NoError(t, err)

	u, err := uc.Authenticate(context.Background(), reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)
	assert.True(t, u.InGroup(user.RoleAgent))

	for _, key := range []string{"", "deadbeef"} {
		_, err := uc.Authenticate(context.Background(), key)
		require.ErrorIs(t, err, user.ErrInvalidToken)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	}
}

func TestUserManagement(t *testing.T) {
	s := newStore()
	uc := newTestUsecase(s)

	staff, err := uc.Register(context.Background(), validForm())
	require.NoError(t, err)
	cust := validForm()
	cust.Username, cust.Role = ptr("cust"), ptr("customer")
	custReg, err := uc.Register(context.Background(), cust)
	require.NoError(t, err)

	caller := s.users[staff.User.ID]
	customerCaller := s.users[custReg.User.ID]

	list, err := uc.ListUsers(context.Background(), caller)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = uc.ListUsers(context.Background(), customerCaller)
	require.ErrorIs(t, err, user.ErrForbidden)

	got, err := uc.GetUser(context.Background(), caller, custReg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "cust", got.Username)

	_, err = uc.GetUser(context.Background(), caller, 404)
	require.ErrorIs(t, err, user.ErrNotFound)

	upd, err := uc.UpdateUser(context.Background(), caller, custReg.User.ID, UpdateUserInput{FirstName: ptr("Jane")})
	require.NoError(t, err)
	assert.Equal(t, "Jane", upd.FirstName)
	assert.Equal(t, "Doe", upd.LastName)
	assert.Equal(t, "cust", upd.Username)

	_, err = uc.UpdateUser(context.Background(), caller, custReg.User.ID, UpdateUserInput{Username: ptr("jdoe")})
	require.ErrorIs(t, err, user.ErrUsernameTaken)

	_, err = uc.UpdateUser(context.Background(), caller, custReg.User.ID, UpdateUserInput{Username: ptr(" ")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
