package postgres

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/model"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const postSchema = `
CREATE TABLE IF NOT EXISTS posts (
    seq        BIGSERIAL    PRIMARY KEY,
    id         UUID         NOT NULL UNIQUE,
    user_id    TEXT         NOT NULL,
    content    TEXT         NOT NULL,
    img_url    TEXT         NOT NULL,
    tags       TEXT[]       NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ  NOT NULL,
    updated_at TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts (user_id);`

const postColumns = `id::text, user_id, content, img_url, tags, created_at, updated_at`

type postRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *postRepository {
	return &postRepository{pool: pool}
}

// EnsureSchema creates the posts table if it does not exist.
func (r *postRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postSchema)
	return err
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	post.CreatedAt = now
	post.UpdatedAt = now

	query := `INSERT INTO posts (id, user_id, content, img_url, tags, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.pool.Exec(ctx, query,
		post.ID, post.AuthorID, post.Content, post.ImageRef, post.Tags, post.CreatedAt, post.UpdatedAt); err != nil {
		util.Logger.Error("failed to create post", zap.Error(err), zap.String("post_id", post.ID))
		return errors.Wrap(errors.ErrDatabase, "failed to create post", err)
	}

	util.Logger.Info("post created", zap.String("post_id", post.ID))
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	if !validID(id) {
		return nil, errNotFound()
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1::uuid`
	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound()
		}
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	return post, nil
}

func (r *postRepository) FindAll(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY seq ASC`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list posts", err)
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to read post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list posts", err)
	}
	return posts, nil
}

func (r *postRepository) UpdateByID(ctx context.Context, id, ownerID string, patch model.PostPatch) (*model.Post, error) {
	if !validID(id) {
		return nil, errNotFound()
	}
	var post *model.Post
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		post, err = lockOwnedPost(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}
		if patch.Content != nil {
			post.Content = *patch.Content
		}
		if patch.Tags != nil {
			post.Tags = append([]string{}, *patch.Tags...)
		}
		post.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

		query := `UPDATE posts SET content = $1, tags = $2, updated_at = $3 WHERE id = $4::uuid`
		if _, err := tx.Exec(ctx, query, post.Content, post.Tags, post.UpdatedAt, id); err != nil {
			util.Logger.Error("failed to update post", zap.Error(err), zap.String("post_id", id))
			return errors.Wrap(errors.ErrDatabase, "failed to update post", err)
		}
		return nil
	})
	if err != nil {
		return nil, asRepositoryError(err)
	}
	return post, nil
}

func (r *postRepository) DeleteByID(ctx context.Context, id, ownerID string) (*model.Post, error) {
	if !validID(id) {
		return nil, errNotFound()
	}
	var post *model.Post
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		post, err = lockOwnedPost(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1::uuid`, id); err != nil {
			util.Logger.Error("failed to delete post", zap.Error(err), zap.String("post_id", id))
			return errors.Wrap(errors.ErrDatabase, "failed to delete post", err)
		}
		return nil
	})
	if err != nil {
		return nil, asRepositoryError(err)
	}

	util.Logger.Info("post deleted", zap.String("post_id", id))
	return post, nil
}

func lockOwnedPost(ctx context.Context, tx pgx.Tx, id, ownerID string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1::uuid AND user_id = $2 FOR UPDATE`
	post, err := scanPost(tx.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound()
		}
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	return post, nil
}

// validID reports whether id can match the uuid column. Anything else
// cannot name a stored post.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func errNotFound() error {
	return errors.New(errors.ErrPostNotFound, "post not found")
}

// asRepositoryError keeps AppErrors from the transaction body and wraps
// begin/commit failures.
func asRepositoryError(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.Wrap(errors.ErrDatabase, "transaction failed", err)
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var post model.Post
	if err := row.Scan(
		&post.ID, &post.AuthorID, &post.Content, &post.ImageRef,
		&post.Tags, &post.CreatedAt, &post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return &post, nil
}
