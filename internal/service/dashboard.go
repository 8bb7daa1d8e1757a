package service

import (
	"context"

	"github.com/quillpost/quillpost-go/internal/model"
)

const recentPostsLimit = 5

// DashboardService aggregates per-user activity.
type DashboardService struct {
	posts    PostStore
	comments CommentStore
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(posts PostStore, comments CommentStore) *DashboardService {
	return &DashboardService{posts: posts, comments: comments}
}

// Stats returns post and comment totals and the latest posts of userID.
func (s *DashboardService) Stats(ctx context.Context, userID int64) (model.DashboardStats, error) {
	totalPosts, err := s.posts.CountByUser(ctx, userID)
	if err != nil {
		return model.DashboardStats{}, storeErr("count posts", err)
	}

	totalComments, err := s.comments.CountByUser(ctx, userID)
	if err != nil {
		return model.DashboardStats{}, storeErr("count comments", err)
	}

	recent, err := s.posts.ListRecentByUser(ctx, userID, recentPostsLimit)
	if err != nil {
		return model.DashboardStats{}, storeErr("list recent posts", err)
	}

	return model.DashboardStats{
		TotalPosts:    totalPosts,
		TotalComments: totalComments,
		RecentPosts:   postsToResponse(recent),
	}, nil
}
