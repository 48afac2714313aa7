package model

import "time"

// Comment mirrors the `comments` table joined with the author's public
// fields for display.
type Comment struct {
	ID           uint64    // comments.id
	Content      string    // comments.content
	AuthorID     uint64    // comments.user_id
	AuthorName   string    // users.username of the author
	AuthorAvatar string    // users.avatar_url of the author (nullable)
	PostID       uint64    // comments.post_id
	CreatedAt    time.Time // comments.created_at
}

// CommentOwnership carries the two identities that may delete a comment:
// the comment's author and the author of the parent post. PostAuthorID
// is 0 when the parent post has no owner (legacy rows).
type CommentOwnership struct {
	AuthorID      uint64 // comments.user_id
	PostID        uint64 // comments.post_id
	PostAuthorID  uint64 // posts.user_id via comments.post_id (0 when NULL)
	PostHasAuthor bool
}
