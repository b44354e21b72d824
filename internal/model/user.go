package model

import "time"

// Roles assignable to an account.  The role travels inside the session
// token and is checked by the authorization middleware.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleUser       = "user"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleTechnician || s == RoleUser
}

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column.  The password hash never leaves
// the repository layer; handlers build separate response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lowercase-normalized email address.
//  FullName     – display name shown in the admin console.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of RoleAdmin, RoleTechnician, RoleUser.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	FullName     string    // users.full_name
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
