package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/model"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"go.uber.org/zap"
)

const postSchema = `
CREATE TABLE IF NOT EXISTS posts (
    seq        BIGINT       NOT NULL AUTO_INCREMENT,
    id         CHAR(36)     NOT NULL,
    user_id    VARCHAR(64)  NOT NULL,
    content    TEXT         NOT NULL,
    img_url    VARCHAR(1024) NOT NULL,
    tags       JSON         NOT NULL,
    created_at DATETIME(6)  NOT NULL,
    updated_at DATETIME(6)  NOT NULL,
    PRIMARY KEY (seq),
    UNIQUE KEY uq_posts_id (id),
    KEY idx_posts_user_id (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const postColumns = `id, user_id, content, img_url, tags, created_at, updated_at`

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{db: db}
}

// EnsureSchema creates the posts table if it does not exist.
func (r *postRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, postSchema)
	return err
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return errors.Wrap(errors.ErrValidation, "invalid tags", err)
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	post.CreatedAt = now
	post.UpdatedAt = now

	query := `INSERT INTO posts (` + postColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		post.ID, post.AuthorID, post.Content, post.ImageRef, tags, post.CreatedAt, post.UpdatedAt); err != nil {
		util.Logger.Error("failed to create post", zap.Error(err), zap.String("post_id", post.ID))
		return errors.Wrap(errors.ErrDatabase, "failed to create post", err)
	}

	util.Logger.Info("post created", zap.String("post_id", post.ID))
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrPostNotFound, "post not found")
		}
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	return post, nil
}

func (r *postRepository) FindAll(ctx context.Context) ([]*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, query)
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
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	post, err := lockOwnedPost(ctx, tx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.Tags != nil {
		post.Tags = append([]string{}, *patch.Tags...)
	}
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return nil, errors.Wrap(errors.ErrValidation, "invalid tags", err)
	}
	post.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	query := `UPDATE posts SET content = ?, tags = ?, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, post.Content, tags, post.UpdatedAt, post.ID); err != nil {
		util.Logger.Error("failed to update post", zap.Error(err), zap.String("post_id", id))
		return nil, errors.Wrap(errors.ErrDatabase, "failed to update post", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to commit transaction", err)
	}
	return post, nil
}

func (r *postRepository) DeleteByID(ctx context.Context, id, ownerID string) (*model.Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	post, err := lockOwnedPost(ctx, tx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		util.Logger.Error("failed to delete post", zap.Error(err), zap.String("post_id", id))
		return nil, errors.Wrap(errors.ErrDatabase, "failed to delete post", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to commit transaction", err)
	}

	util.Logger.Info("post deleted", zap.String("post_id", id))
	return post, nil
}

// lockOwnedPost selects the post for update only if ownerID authored it.
func lockOwnedPost(ctx context.Context, tx *sql.Tx, id, ownerID string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ? AND user_id = ? FOR UPDATE`
	post, err := scanPost(tx.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrPostNotFound, "post not found")
		}
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	return post, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var post model.Post
	var tags []byte
	if err := row.Scan(
		&post.ID, &post.AuthorID, &post.Content, &post.ImageRef,
		&tags, &post.CreatedAt, &post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	post.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &post.Tags); err != nil {
			return nil, err
		}
		if post.Tags == nil {
			post.Tags = []string{}
		}
	}
	return &post, nil
}
