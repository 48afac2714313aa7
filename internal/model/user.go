package model

import "time"

// User mirrors the `users` table. Bio and AvatarURL are nullable in the
// schema; an empty string means the column is NULL.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique display name (minimum 3 characters).
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password; the plaintext is never stored.
//  Bio          – optional free-form profile text.
//  AvatarURL    – optional path to an uploaded avatar image.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Bio          string    // users.bio (nullable)
	AvatarURL    string    // users.avatar_url (nullable)
	CreatedAt    time.Time // users.created_at
}

// Identity is the authenticated user context derived from a session
// token. It is the only user information middleware and handlers need
// for authorization decisions.
type Identity struct {
	UserID   uint64
	Username string
}
