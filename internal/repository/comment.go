package repository

import (
	"context"
	"database/sql"

	"github.com/quillpost/quillpost-go/internal/model"
)

// CommentRepository handles comment persistence operations.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment and sets its generated ID.
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, user_id, content) VALUES (?, ?, ?)`,
		c.PostID, c.UserID, c.Content,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	c.ID = id
	return nil
}

// ListByPost retrieves the comments of a post in posting order, with the
// author's username.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `SELECT c.id, c.post_id, c.user_id, u.username, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ? ORDER BY c.created_at ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// CountByUser returns the number of comments written by a user.
func (r *CommentRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
