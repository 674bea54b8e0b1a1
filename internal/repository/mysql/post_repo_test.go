package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "user_id", "content", "img_url", "tags", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*postRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	post := &model.Post{ID: "p-1", AuthorID: "u-1", Content: "hi", ImageRef: "http://img/a.png", Tags: []string{"go"}}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO posts")).
		WithArgs("p-1", "u-1", "hi", "http://img/a.png", []byte(`["go"]`), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), post))
	assert.False(t, post.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM posts WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrPostNotFound))
}

func TestFindAllKeepsCreationOrder(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM posts ORDER BY seq ASC")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a", "u-1", "first", "img/a", []byte(`[]`), now, now).
			AddRow("b", "u-1", "second", "img/b", []byte(`["x"]`), now, now))

	posts, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, []string{}, posts[0].Tags)
	assert.Equal(t, []string{"x"}, posts[1].Tags)
}

func TestUpdateByIDOtherOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	content := "changed"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ? AND user_id = ? FOR UPDATE")).
		WithArgs("p-1", "intruder").
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectRollback()

	_, err := repo.UpdateByID(context.Background(), "p-1", "intruder", model.PostPatch{Content: &content})
	assert.True(t, errors.Is(err, errors.ErrPostNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByIDOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	content := "changed"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ? AND user_id = ? FOR UPDATE")).
		WithArgs("p-1", "u-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("p-1", "u-1", "old", "img/a", []byte(`["go"]`), now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET content = ?, tags = ?, updated_at = ? WHERE id = ?")).
		WithArgs("changed", []byte(`["go"]`), sqlmock.AnyArg(), "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	post, err := repo.UpdateByID(context.Background(), "p-1", "u-1", model.PostPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "changed", post.Content)
	assert.Equal(t, []string{"go"}, post.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("p-1", "u-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("p-1", "u-1", "bye", "img/a", []byte(`[]`), now, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posts WHERE id = ?")).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	post, err := repo.DeleteByID(context.Background(), "p-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "bye", post.Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}
