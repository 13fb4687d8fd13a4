package models

import (
	"time"
)

// User roles. Admins manage the catalog and orders; everyone else is a customer.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a registered account.
type User struct {
	BaseModel
	Name         string          `json:"name"`
	Email        string          `gorm:"uniqueIndex" json:"email"`
	Phone        string          `json:"phone"`
	PasswordHash string          `json:"-"`
	Role         string          `gorm:"default:customer" json:"role"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	Orders       []Order         `json:"orders,omitempty"`
	Reviews      []ProductReview `json:"reviews,omitempty"`
}

// IsAdmin reports whether the account has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PasswordResetOTP keeps track of reset codes emailed to users.
type PasswordResetOTP struct {
	BaseModel
	Email     string     `gorm:"index" json:"email"`
	Code      string     `json:"-"`
	Token     string     `gorm:"uniqueIndex" json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}

// Expired reports whether the OTP is past its validity window.
func (o *PasswordResetOTP) Expired() bool {
	return time.Now().After(o.ExpiresAt)
}
