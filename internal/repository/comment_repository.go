package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/go-blog/internal/model"
)

// CommentRepo encapsulates database operations on the comments table.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment after trimming its content. Empty or
// all-whitespace content is a ValidationError and never reaches the
// database. A vanished parent post maps to ErrNotFound.
func (r *CommentRepo) Create(ctx context.Context, postID, authorID uint64, content string) (uint64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, &ValidationError{Problems: []string{"Comment content cannot be empty"}}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (content, user_id, post_id) VALUES (?,?,?)",
		content, authorID, postID)
	if err != nil {
		if isMissingReference(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Owners resolves the two identities that may delete the comment: its
// author and the author of the parent post. Both lookups always run,
// even though either one alone could grant permission, to keep the
// dual-ownership rule explicit and auditable. Returns ErrNotFound when
// the comment does not exist.
func (r *CommentRepo) Owners(ctx context.Context, commentID uint64) (model.CommentOwnership, error) {
	var own model.CommentOwnership
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, post_id FROM comments WHERE id=? LIMIT 1",
		commentID).Scan(&own.AuthorID, &own.PostID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CommentOwnership{}, ErrNotFound
	}
	if err != nil {
		return model.CommentOwnership{}, err
	}

	var postAuthor sql.NullInt64
	err = r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM posts WHERE id=? LIMIT 1",
		own.PostID).Scan(&postAuthor)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.CommentOwnership{}, err
	}
	if postAuthor.Valid {
		own.PostAuthorID = uint64(postAuthor.Int64)
		own.PostHasAuthor = true
	}
	return own, nil
}

// Delete removes a comment unconditionally. Authorization is enforced
// by the ownership guard before this is ever reached.
func (r *CommentRepo) Delete(ctx context.Context, commentID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", commentID)
	return err
}
