// internal/models/user.go
package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
	RoleInvestor Role = "investor"
)

// ValidRole reports whether r is one of the four account roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleCustomer, RoleInvestor:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"` // stored lowercase, unique
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	BusinessType string    `json:"businessType,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
