package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/go-blog/internal/model"
)

// UserRepo encapsulates database operations on the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The password must already be
// hashed by the caller; this layer never sees plaintext. A collision on
// the unique username or email key yields ErrUserExists so a lost race
// against a concurrent registration maps to the same user-visible
// failure as the pre-insert existence check.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)",
		username, email, passwordHash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Exists reports whether a user with the given username OR email is
// already registered. Registration runs this as a single existence
// query against both fields.
func (r *UserRepo) Exists(ctx context.Context, username, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE username=? OR email=? LIMIT 1",
		strings.TrimSpace(username), email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByUsernameOrEmail fetches a user whose username or email matches
// the identifier. Login accepts either, so both columns are probed with
// one query. Returns ErrNotFound when nothing matches.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,bio,avatar_url,created_at FROM users WHERE username=? OR email=? LIMIT 1",
		identifier, strings.ToLower(identifier)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,bio,avatar_url,created_at FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,bio,avatar_url,created_at FROM users WHERE username=? LIMIT 1",
		username))
}

// UpdateProfile mutates the two caller-editable columns. The avatar URL
// is passed through unchanged when no new image was uploaded; the
// repository never looks the prior value up implicitly.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, bio, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET bio=?, avatar_url=? WHERE id=?",
		nullable(bio), nullable(avatarURL), id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u      model.User
		bio    sql.NullString
		avatar sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &bio, &avatar, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Bio = bio.String
	u.AvatarURL = avatar.String
	return u, nil
}

// nullable maps an empty string to NULL so optional columns stay NULL
// instead of collecting empty strings.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
