package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockDB is shared by every repository test in this package.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestLikeDuplicateMapsToAlreadyLiked(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes (user_id, post_id) VALUES (?,?)")).
		WithArgs(1, 2).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1-2' for key 'likes.uniq_likes_user_post'"))

	err := NewLikeRepo(db).Like(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrAlreadyLiked)
}

func TestLikeMissingPostMapsToNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes")).
		WithArgs(1, 999).
		WillReturnError(errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails"))

	err := NewLikeRepo(db).Like(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLikeSucceeds(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes")).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(11, 1))

	assert.NoError(t, NewLikeRepo(db).Like(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlikeIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)

	// Nothing to delete: zero rows affected is still success.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM likes WHERE user_id=? AND post_id=?")).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, NewLikeRepo(db).Unlike(context.Background(), 1, 2))
}

func TestCountForPost(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS like_count").
		WithArgs(2, 7, 2).
		WillReturnRows(sqlmock.NewRows([]string{"like_count", "user_liked"}).AddRow(3, 1))

	lc, err := NewLikeRepo(db).CountForPost(context.Background(), 2, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), lc.LikeCount)
	assert.True(t, lc.UserLiked)
}

func TestCountForPostAnonymousViewer(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS like_count").
		WithArgs(2, 0, 2).
		WillReturnRows(sqlmock.NewRows([]string{"like_count", "user_liked"}).AddRow(3, 0))

	lc, err := NewLikeRepo(db).CountForPost(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), lc.LikeCount)
	assert.False(t, lc.UserLiked)
}
