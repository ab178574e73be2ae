package model

import "time"

// Role values stored in users.role. Signup always assigns RoleUser; admins
// are promoted directly in the database.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table. The password hash is never serialized; handlers build their own
// response shapes from the remaining fields.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique handle (letters, digits, underscores).
//  Email        – unique, normalized to lower case.
//  PasswordHash – bcrypt hashed password.
//  Role         – either "user" or "admin".
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
