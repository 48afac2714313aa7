package model

import "time"

// ProfileStats are the three per-user counts shown on profile pages.
// Each count is scoped to the same user id over its own relation.
type ProfileStats struct {
	PostCount    uint64
	CommentCount uint64
	LikeCount    uint64
}

// Profile combines a user row with its statistics. For public profiles
// Email is left empty and the user's ten most recent posts (with their
// own aggregates) are attached.
type Profile struct {
	User  User
	Stats ProfileStats
	Posts []PostSummary
}

// DirectoryEntry is one row of the public user directory.
type DirectoryEntry struct {
	ID           uint64
	Username     string
	Bio          string
	AvatarURL    string
	CreatedAt    time.Time
	PostCount    uint64
	CommentCount uint64
}
