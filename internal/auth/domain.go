package auth

import "errors"

// Role enumerates the supported user roles.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleCashier        Role = "CASHIER"
	RoleWarehouseClerk Role = "WAREHOUSE_CLERK"
	RoleDriver         Role = "DRIVER"
	RoleHR             Role = "HR"
)

// IsValid checks the role against the closed set.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCashier, RoleWarehouseClerk, RoleDriver, RoleHR:
		return true
	default:
		return false
	}
}

// User is an employee account. PasswordHash is a bcrypt digest; the
// plain credential is never stored.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Role         Role     `json:"role"`
	Salary       float64  `json:"salary"`
	BranchID     string   `json:"branchId,omitempty"`
	Permissions  []string `json:"permissions"`
}

// CreateUserInput registers a new employee account.
type CreateUserInput struct {
	Name        string   `json:"name" validate:"required"`
	Username    string   `json:"username" validate:"required,min=3"`
	Password    string   `json:"password" validate:"required,min=8"`
	Role        Role     `json:"role" validate:"required"`
	Salary      float64  `json:"salary" validate:"gte=0"`
	BranchID    string   `json:"branchId"`
	Permissions []string `json:"permissions"`
}

// UpdateUserInput edits an existing account. A non-empty password
// replaces the stored hash.
type UpdateUserInput struct {
	Name        string   `json:"name" validate:"required"`
	Password    string   `json:"password" validate:"omitempty,min=8"`
	Role        Role     `json:"role" validate:"required"`
	Salary      float64  `json:"salary" validate:"gte=0"`
	BranchID    string   `json:"branchId"`
	Permissions []string `json:"permissions"`
}

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrUserNotFound indicates an unknown user id or username.
var ErrUserNotFound = errors.New("auth: user not found")

// ErrUsernameTaken indicates a duplicate username at registration.
var ErrUsernameTaken = errors.New("auth: username already taken")

// ErrInvalidRole indicates a role outside the closed set.
var ErrInvalidRole = errors.New("auth: invalid role")
