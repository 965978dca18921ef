// ABOUTME: Wire types exchanged with the backend's /auth endpoints
// ABOUTME: Credentials are transient and never persisted

package auth

// Mode selects which form the user is filling in
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Credentials is the username/password pair submitted by the user
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login
type LoginResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// RegisterResponse is returned by POST /auth/register
type RegisterResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Active   bool     `json:"active"`
	Roles    []string `json:"roles"`
	Message  string   `json:"message"`
}
