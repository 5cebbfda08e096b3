package domain

// RoleAdmin is the only dashboard role: the password gate grants full access.
const RoleAdmin = "admin"

// LoginRequest carries the dashboard password.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}
