package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/go-blog/internal/model"
)

// LikeRepo encapsulates database operations on the likes table. The
// unique (user_id, post_id) key in the schema is the source of truth
// for the at-most-one-like rule; there is deliberately no prior
// existence check, so concurrent duplicate attempts cannot interleave
// between a check and the insert.
type LikeRepo struct{ DB *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{DB: db} }

// Like records that userID liked postID. A duplicate pair is rejected
// by the unique key and reported as ErrAlreadyLiked; a missing post is
// reported as ErrNotFound via the foreign-key failure.
func (r *LikeRepo) Like(ctx context.Context, userID, postID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO likes (user_id, post_id) VALUES (?,?)",
		userID, postID)
	if isDuplicateKey(err) {
		return ErrAlreadyLiked
	}
	if isMissingReference(err) {
		return ErrNotFound
	}
	return err
}

// Unlike removes the like for the pair. Deleting a like that does not
// exist is a no-op, which makes the operation idempotent.
func (r *LikeRepo) Unlike(ctx context.Context, userID, postID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM likes WHERE user_id=? AND post_id=?",
		userID, postID)
	return err
}

// CountForPost returns the total like count for a post together with
// whether the viewer already liked it. Viewer id 0 (anonymous) never
// matches, so user_liked is false without a special case.
func (r *LikeRepo) CountForPost(ctx context.Context, postID, viewerID uint64) (model.LikeCount, error) {
	var (
		lc    model.LikeCount
		liked int
	)
	err := r.DB.QueryRowContext(ctx, `
SELECT COUNT(*) AS like_count,
       EXISTS(SELECT 1 FROM likes WHERE post_id = ? AND user_id = ?) AS user_liked
FROM likes
WHERE post_id = ?`,
		postID, viewerID, postID).Scan(&lc.LikeCount, &liked)
	if err != nil {
		return model.LikeCount{}, err
	}
	lc.UserLiked = liked == 1
	return lc, nil
}
