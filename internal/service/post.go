package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quillpost/quillpost-go/internal/model"
	"github.com/quillpost/quillpost-go/internal/repository"
)

// PostStore persists blog posts.
type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	ListRecentByUser(ctx context.Context, userID int64, limit int) ([]model.Post, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, userID, postID int64) error
}

// PostService handles blog post business logic.
type PostService struct {
	posts PostStore
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore) *PostService {
	return &PostService{posts: posts}
}

// Create publishes a new post authored by userID.
func (s *PostService) Create(ctx context.Context, userID int64, req model.PostRequest) (model.PostResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest(req); err != nil {
		return model.PostResponse{}, err
	}

	now := time.Now().UTC()
	post := &model.Post{
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return model.PostResponse{}, storeErr("create post", err)
	}

	return post.Response(), nil
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, postID int64) (model.PostResponse, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return model.PostResponse{}, err
	}
	return post.Response(), nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]model.PostResponse, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, storeErr("list posts", err)
	}
	return postsToResponse(posts), nil
}

// Update edits a post. Only the author may change it.
func (s *PostService) Update(ctx context.Context, userID, postID int64, req model.PostRequest) (model.PostResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest(req); err != nil {
		return model.PostResponse{}, err
	}

	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return model.PostResponse{}, err
	}

	post.Title = req.Title
	post.Content = req.Content
	if err := s.posts.Update(ctx, post); err != nil {
		return model.PostResponse{}, storeErr("update post", err)
	}
	post.UpdatedAt = time.Now().UTC()

	return post.Response(), nil
}

// Delete removes a post. Only the author may delete it.
func (s *PostService) Delete(ctx context.Context, userID, postID int64) error {
	if _, err := s.owned(ctx, userID, postID); err != nil {
		return err
	}

	err := s.posts.Delete(ctx, userID, postID)
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		return ErrPostNotFound
	case err != nil:
		return storeErr("delete post", err)
	}
	return nil
}

func (s *PostService) get(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeErr("get post", err)
	}
	return post, nil
}

func (s *PostService) owned(ctx context.Context, userID, postID int64) (*model.Post, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrForbidden
	}
	return post, nil
}

// postsToResponse converts a slice of Post to a slice of PostResponse.
func postsToResponse(posts []model.Post) []model.PostResponse {
	result := make([]model.PostResponse, len(posts))
	for i := range posts {
		result[i] = posts[i].Response()
	}
	return result
}
