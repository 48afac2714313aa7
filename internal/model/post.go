package model

import "time"

// Post mirrors the `posts` table. AuthorID is nullable in the schema to
// tolerate rows created before authentication existed; HasAuthor reports
// whether the column was set.
type Post struct {
	ID        uint64    // posts.id
	Title     string    // posts.title
	Content   string    // posts.content
	ImageURL  string    // posts.image_url (nullable)
	AuthorID  uint64    // posts.user_id (0 when NULL)
	HasAuthor bool      // whether posts.user_id is non-NULL
	CreatedAt time.Time // posts.created_at
}

// PostSummary is one row of the post listing: the post joined with its
// author's username and the derived aggregates. UserLiked is computed
// against the viewing user and is always false for anonymous viewers.
type PostSummary struct {
	ID           uint64
	Title        string
	Content      string
	ImageURL     string
	AuthorID     uint64
	AuthorName   string // empty when the post has no author
	CreatedAt    time.Time
	CommentCount uint64
	LikeCount    uint64
	UserLiked    bool
}

// PostDetail is a single post with the same aggregates as the listing
// plus its full comment thread, oldest comment first.
type PostDetail struct {
	PostSummary
	Comments []Comment
}
