package model

import "time"

// Comment represents a comment on a post. Username is filled by queries that
// join the author.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Username  string
	Content   string
	CreatedAt time.Time
}

// CommentRequest represents a new comment.
type CommentRequest struct {
	PostID  int64  `json:"post_id" validate:"required,gt=0"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// CommentAuthor is the public part of the comment's author.
type CommentAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CommentResponse represents a comment returned by the API.
type CommentResponse struct {
	ID        int64         `json:"id"`
	Content   string        `json:"content"`
	PostID    int64         `json:"post_id"`
	UserID    int64         `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
	User      CommentAuthor `json:"user"`
}

// Response converts the stored comment to its API shape.
func (c *Comment) Response() CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		User: CommentAuthor{
			ID:       c.UserID,
			Username: c.Username,
		},
	}
}
