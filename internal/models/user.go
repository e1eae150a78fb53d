package models

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role,omitempty"` // citizen | agent
}

const (
	RoleCitizen = "citizen"
	RoleAgent   = "agent"
)

type Credentials struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=6"`
}

type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}
