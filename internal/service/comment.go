package service

import (
	"context"
	"time"

	"github.com/quillpost/quillpost-go/internal/model"
)

// CommentStore persists comments.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// CommentService handles comment business logic.
type CommentService struct {
	comments CommentStore
	posts    *PostService
	users    *AuthService
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments CommentStore, posts *PostService, users *AuthService) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users}
}

// Create adds a comment by userID to an existing post.
func (s *CommentService) Create(ctx context.Context, userID int64, req model.CommentRequest) (model.CommentResponse, error) {
	if err := validateRequest(req); err != nil {
		return model.CommentResponse{}, err
	}

	if _, err := s.posts.get(ctx, req.PostID); err != nil {
		return model.CommentResponse{}, err
	}

	author, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return model.CommentResponse{}, err
	}

	c := &model.Comment{
		PostID:    req.PostID,
		UserID:    userID,
		Username:  author.Username,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return model.CommentResponse{}, storeErr("create comment", err)
	}

	return c.Response(), nil
}

// ListByPost returns the comments of a post, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID int64) ([]model.CommentResponse, error) {
	if _, err := s.posts.get(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, storeErr("list comments", err)
	}

	result := make([]model.CommentResponse, len(comments))
	for i := range comments {
		result[i] = comments[i].Response()
	}
	return result, nil
}
