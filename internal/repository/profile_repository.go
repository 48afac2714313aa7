package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/go-blog/internal/model"
)

// ProfileRepo aggregates per-user statistics for profile views. It
// owns the derived reads and delegates plain user lookups to UserRepo.
type ProfileRepo struct {
	DB    *sql.DB
	Users *UserRepo
}

func NewProfileRepo(db *sql.DB, users *UserRepo) *ProfileRepo {
	return &ProfileRepo{DB: db, Users: users}
}

// Stats computes the three per-user counts in one round trip. Three
// scalar subqueries, each scoped to its own relation, avoid the fanout
// a multi-join would introduce between the counted tables.
func (r *ProfileRepo) Stats(ctx context.Context, userID uint64) (model.ProfileStats, error) {
	var st model.ProfileStats
	err := r.DB.QueryRowContext(ctx, `
SELECT (SELECT COUNT(*) FROM posts    WHERE user_id = ?) AS post_count,
       (SELECT COUNT(*) FROM comments WHERE user_id = ?) AS comment_count,
       (SELECT COUNT(*) FROM likes    WHERE user_id = ?) AS like_count`,
		userID, userID, userID).Scan(&st.PostCount, &st.CommentCount, &st.LikeCount)
	return st, err
}

// GetProfile returns the full profile for the user's own view,
// including the email address.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID uint64) (model.Profile, error) {
	u, err := r.Users.GetByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	st, err := r.Stats(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{User: u, Stats: st}, nil
}

// GetPublicProfile returns the profile as shown to other viewers: no
// email, same counts, plus the user's ten most recent posts with their
// own comment/like aggregates. Returns ErrNotFound for an unknown
// username.
func (r *ProfileRepo) GetPublicProfile(ctx context.Context, username string) (model.Profile, error) {
	u, err := r.Users.GetByUsername(ctx, username)
	if err != nil {
		return model.Profile{}, err
	}
	st, err := r.Stats(ctx, u.ID)
	if err != nil {
		return model.Profile{}, err
	}
	posts, err := r.recentPosts(ctx, u.ID)
	if err != nil {
		return model.Profile{}, err
	}
	u.Email = "" // private field, never rendered on public profiles
	return model.Profile{User: u, Stats: st, Posts: posts}, nil
}

func (r *ProfileRepo) recentPosts(ctx context.Context, userID uint64) ([]model.PostSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT p.id, p.title, p.content, p.image_url, p.created_at,
       COUNT(DISTINCT c.id) AS comment_count,
       COUNT(DISTINCT l.id) AS like_count
FROM posts p
LEFT JOIN comments c ON c.post_id = p.id
LEFT JOIN likes l    ON l.post_id = p.id
WHERE p.user_id = ?
GROUP BY p.id, p.title, p.content, p.image_url, p.created_at
ORDER BY p.created_at DESC, p.id DESC
LIMIT 10`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PostSummary
	for rows.Next() {
		var (
			s     model.PostSummary
			image sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Content, &image, &s.CreatedAt,
			&s.CommentCount, &s.LikeCount); err != nil {
			return nil, err
		}
		s.ImageURL = image.String
		s.AuthorID = userID
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListUsers returns the public member directory with per-user post and
// comment counts, ordered by username.
func (r *ProfileRepo) ListUsers(ctx context.Context) ([]model.DirectoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT u.id, u.username, u.avatar_url, u.bio, u.created_at,
       COUNT(DISTINCT p.id) AS post_count,
       COUNT(DISTINCT c.id) AS comment_count
FROM users u
LEFT JOIN posts p    ON p.user_id = u.id
LEFT JOIN comments c ON c.user_id = u.id
GROUP BY u.id, u.username, u.avatar_url, u.bio, u.created_at
ORDER BY u.username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DirectoryEntry
	for rows.Next() {
		var (
			e      model.DirectoryEntry
			avatar sql.NullString
			bio    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Username, &avatar, &bio, &e.CreatedAt,
			&e.PostCount, &e.CommentCount); err != nil {
			return nil, err
		}
		e.AvatarURL = avatar.String
		e.Bio = bio.String
		out = append(out, e)
	}
	return out, rows.Err()
}
