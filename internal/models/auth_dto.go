package models

type RegisterRequest struct {
	Username        string `json:"username"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the body of every auth endpoint: the public user
// projection (nil after logout) and whether the caller holds a session.
type AuthResponse struct {
	User *UserDTO `json:"user"`
	Auth bool     `json:"auth"`
}
