package models

type User struct {
	ID              int     `json:"id,omitempty"`
	Name            string  `json:"name,omitempty"`
	Fullname        string  `json:"fullname,omitempty"`
	Email           string  `json:"email"`
	Username        string  `json:"username,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Role            string  `json:"role,omitempty"`
	EmailVerifiedAt *string `json:"email_verified_at,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
}

// AuthResponse возвращают /login и /register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

type RemoteSession struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type RefreshResponse struct {
	OK      bool           `json:"ok"`
	UserID  string         `json:"user_id"`
	Session *RemoteSession `json:"session"`
}

type MeResponse struct {
	User *User `json:"user"`
}
