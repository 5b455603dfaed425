package account

import "loan-management/internal/domain/user"

// RegisterInput mirrors the registration form; nil means the field was not sent.
type RegisterInput struct {
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}

type UpdateUserInput struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type UserDTO struct {
	ID        uint64   `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Groups    []string `json:"groups"`
}

type RegisterDTO struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

type TokenDTO struct {
	Token string `json:"token"`
}

func ToUserDTO(u *user.User) UserDTO {
	groups := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		groups = append(groups, string(g.Name))
	}
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Groups:    groups,
	}
}
