package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quillpost/quillpost-go/internal/model"
)

var ErrPostNotFound = errors.New("post not found")

const postColumns = `id, user_id, title, content, created_at, updated_at`

// PostRepository handles blog post persistence operations.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post and sets its generated ID.
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, title, content) VALUES (?, ?, ?)`,
		post.UserID, post.Title, post.Content,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	post.ID = id
	return nil
}

// GetByID retrieves a post by its ID.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id).Scan(
		&post.ID, &post.UserID, &post.Title, &post.Content, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	return post, nil
}

// List retrieves all posts, newest first.
func (r *PostRepository) List(ctx context.Context) ([]model.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
}

// ListRecentByUser retrieves the newest posts written by a user.
func (r *PostRepository) ListRecentByUser(ctx context.Context, userID int64, limit int) ([]model.Post, error) {
	return r.query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
}

// CountByUser returns the number of posts written by a user.
func (r *PostRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// Update rewrites title and content of a post owned by the given user.
// MySQL reports zero affected rows when nothing changed, so existence is the
// caller's responsibility.
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ? WHERE id = ? AND user_id = ?`,
		post.Title, post.Content, post.ID, post.UserID,
	)
	return err
}

// Delete removes a post owned by the given user. Comments cascade.
func (r *PostRepository) Delete(ctx context.Context, userID, postID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) query(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}
