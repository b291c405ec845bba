package domain

import (
	"time"
)

// User is a storefront account managed from the admin dashboard
type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Role        UserRole   `json:"role"`
	Status      UserStatus `json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleManager  UserRole = "manager"
	UserRoleSupport  UserRole = "support"
	UserRoleCustomer UserRole = "customer"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// UserInput is the payload for create and update calls.
type UserInput struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Password string   `json:"password,omitempty"`
	Role     UserRole `json:"role,omitempty"`
}
