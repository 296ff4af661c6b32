package models

import (
	"strings"
	"time"
)

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Title is the human label shown on the dashboard.
func (r Role) Title() string {
	if r == RoleAdmin {
		return "Administrator"
	}
	return "Employee"
}

// Account is a registered user's durable identity and credential record.
//
// Password holds whatever the configured credential scheme stores: the
// verbatim password for the plain scheme, an encoded hash otherwise.
type Account struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      Role
	CreatedAt time.Time
}

// User returns the identity snapshot of the account.
func (a Account) User() User {
	return User{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Role:      a.Role,
	}
}

// Matches reports whether term is contained, case-insensitively, in the
// first name, last name or email. An empty term matches everything.
func (a Account) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(a.FirstName), term) ||
		strings.Contains(strings.ToLower(a.LastName), term) ||
		strings.Contains(strings.ToLower(a.Email), term)
}

// AccountUpdate carries the fields an administrator may edit.
// The password is deliberately absent.
type AccountUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Role      Role
}

// User is the identity exposed to the presentation layer.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      Role
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
