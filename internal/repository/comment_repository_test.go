package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreateRejectsBlankContent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommentRepo(db)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := repo.Create(context.Background(), 1, 2, content)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"Comment content cannot be empty"}, verr.Problems)
	}

	// None of the rejected inputs reached the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentCreateTrimsAndInserts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO comments (content, user_id, post_id) VALUES (?,?,?)")).
		WithArgs("hello", 2, 1).
		WillReturnResult(sqlmock.NewResult(9, 1))

	id, err := NewCommentRepo(db).Create(context.Background(), 1, 2, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentCreateOnMissingPost(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO comments")).
		WillReturnError(errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails"))

	_, err := NewCommentRepo(db).Create(context.Background(), 999, 2, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentOwners(t *testing.T) {
	t.Run("comment and post authors resolved", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, post_id FROM comments WHERE id=?")).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "post_id"}).AddRow(6, 2))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM posts WHERE id=?")).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))

		own, err := NewCommentRepo(db).Owners(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), own.AuthorID)
		assert.Equal(t, uint64(2), own.PostID)
		assert.True(t, own.PostHasAuthor)
		assert.Equal(t, uint64(5), own.PostAuthorID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ownerless parent post grants only the comment author", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, post_id FROM comments WHERE id=?")).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "post_id"}).AddRow(6, 2))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM posts WHERE id=?")).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(nil))

		own, err := NewCommentRepo(db).Owners(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), own.AuthorID)
		assert.False(t, own.PostHasAuthor)
	})

	t.Run("missing comment", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, post_id FROM comments WHERE id=?")).
			WithArgs(999).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "post_id"}))

		_, err := NewCommentRepo(db).Owners(context.Background(), 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
