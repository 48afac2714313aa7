package model

// Like mirrors the `likes` table. The schema enforces at most one row
// per (user, post) pair with a unique key; the repository maps the
// duplicate-key error to a domain error rather than relying on a prior
// existence check.
type Like struct {
	ID     uint64 // likes.id
	UserID uint64 // likes.user_id
	PostID uint64 // likes.post_id
}

// LikeCount is the aggregate returned by the JSON likes endpoint.
type LikeCount struct {
	LikeCount uint64 `json:"like_count"`
	UserLiked bool   `json:"user_liked"`
}
