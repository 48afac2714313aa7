package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/go-blog/internal/model"
)

// PostRepo provides CRUD and aggregation queries over posts. The listing
// and detail queries join authors, comments and likes in one statement
// so the derived counts are computed consistently in the database.
type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

// postAggregateQuery is shared between the listing and the detail query.
// The correlated EXISTS computes the per-viewer "liked" flag; viewer id 0
// stands for an anonymous viewer and can never match a likes row, so the
// flag degrades to false without a separate query shape.
const postAggregateQuery = `
SELECT p.id, p.title, p.content, p.image_url, p.user_id, u.username, p.created_at,
       COUNT(DISTINCT c.id) AS comment_count,
       COUNT(DISTINCT l.id) AS like_count,
       EXISTS(SELECT 1 FROM likes v WHERE v.post_id = p.id AND v.user_id = ?) AS user_liked
FROM posts p
LEFT JOIN users u    ON u.id = p.user_id
LEFT JOIN comments c ON c.post_id = p.id
LEFT JOIN likes l    ON l.post_id = p.id`

// ListWithAggregates returns every post, newest first (ties broken by id
// ascending for determinism), annotated with author username, distinct
// comment/like counts and whether the viewer already liked it.
func (r *PostRepo) ListWithAggregates(ctx context.Context, viewerID uint64) ([]model.PostSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		postAggregateQuery+`
GROUP BY p.id, p.title, p.content, p.image_url, p.user_id, u.username, p.created_at
ORDER BY p.created_at DESC, p.id ASC`,
		viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PostSummary
	for rows.Next() {
		s, err := scanPostSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetDetail returns one post with the same aggregates as the listing
// plus its comments, oldest first, each joined with the author's public
// fields. Returns ErrNotFound when the post does not exist.
func (r *PostRepo) GetDetail(ctx context.Context, postID, viewerID uint64) (*model.PostDetail, error) {
	row := r.DB.QueryRowContext(ctx,
		postAggregateQuery+`
WHERE p.id = ?
GROUP BY p.id, p.title, p.content, p.image_url, p.user_id, u.username, p.created_at`,
		viewerID, postID)

	summary, err := scanPostSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	comments, err := r.commentsForPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &model.PostDetail{PostSummary: summary, Comments: comments}, nil
}

func (r *PostRepo) commentsForPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT c.id, c.content, c.user_id, u.username, u.avatar_url, c.post_id, c.created_at
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.post_id = ?
ORDER BY c.created_at ASC, c.id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var (
			cm     model.Comment
			avatar sql.NullString
		)
		if err := rows.Scan(&cm.ID, &cm.Content, &cm.AuthorID, &cm.AuthorName, &avatar, &cm.PostID, &cm.CreatedAt); err != nil {
			return nil, err
		}
		cm.AuthorAvatar = avatar.String
		out = append(out, cm)
	}
	return out, rows.Err()
}

// Get fetches the raw post row, without aggregates. Used by the edit
// form, which needs the stored image reference to echo back on update.
func (r *PostRepo) Get(ctx context.Context, postID uint64) (model.Post, error) {
	var (
		p      model.Post
		image  sql.NullString
		author sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, title, content, image_url, user_id, created_at FROM posts WHERE id=? LIMIT 1",
		postID).Scan(&p.ID, &p.Title, &p.Content, &image, &author, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, err
	}
	p.ImageURL = image.String
	if author.Valid {
		p.AuthorID = uint64(author.Int64)
		p.HasAuthor = true
	}
	return p, nil
}

// Create inserts a post owned by ownerID and returns the new id. The
// owner is set exactly once here and no update path touches it again.
func (r *PostRepo) Create(ctx context.Context, ownerID uint64, title, content, imageURL string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (title, content, image_url, user_id) VALUES (?,?,?,?)",
		title, content, nullable(imageURL), ownerID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites title, content and image reference. Callers that keep
// the existing image must pass the prior reference explicitly; passing
// an empty string clears the column.
func (r *PostRepo) Update(ctx context.Context, postID uint64, title, content, imageURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE posts SET title=?, content=?, image_url=? WHERE id=?",
		title, content, nullable(imageURL), postID)
	return err
}

// Delete removes a post. Comments and likes cascade in the schema.
func (r *PostRepo) Delete(ctx context.Context, postID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id=?", postID)
	return err
}

// OwnerID returns the owning user of a post. hasOwner is false for
// legacy rows whose user_id is NULL; such posts belong to nobody and
// fail every ownership check. Returns ErrNotFound for a missing post.
func (r *PostRepo) OwnerID(ctx context.Context, postID uint64) (ownerID uint64, hasOwner bool, err error) {
	var owner sql.NullInt64
	err = r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM posts WHERE id=? LIMIT 1", postID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, err
	}
	if !owner.Valid {
		return 0, false, nil
	}
	return uint64(owner.Int64), true, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the shared aggregate scan.
type scanner interface{ Scan(dest ...any) error }

func scanPostSummary(sc scanner) (model.PostSummary, error) {
	var (
		s      model.PostSummary
		image  sql.NullString
		author sql.NullInt64
		name   sql.NullString
		liked  int
	)
	err := sc.Scan(&s.ID, &s.Title, &s.Content, &image, &author, &name, &s.CreatedAt,
		&s.CommentCount, &s.LikeCount, &liked)
	if err != nil {
		return model.PostSummary{}, err
	}
	s.ImageURL = image.String
	if author.Valid {
		s.AuthorID = uint64(author.Int64)
	}
	s.AuthorName = name.String
	s.UserLiked = liked == 1
	return s, nil
}
