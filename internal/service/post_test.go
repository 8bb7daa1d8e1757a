package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/quillpost/quillpost-go/internal/model"
)

func newTestPostService() (*PostService, *memPostStore) {
	store := newMemPostStore()
	return NewPostService(store), store
}

func TestCreatePost_Validation(t *testing.T) {
	svc, _ := newTestPostService()

	_, err := svc.Create(context.Background(), 1, model.PostRequest{Title: "Hi", Content: "long enough content"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["title"] == "" {
		t.Errorf("expected title validation error, got %v", err)
	}

	_, err = svc.Create(context.Background(), 1, model.PostRequest{Title: "Hello", Content: "short"})
	if !errors.As(err, &verr) || verr.Fields["content"] == "" {
		t.Errorf("expected content validation error, got %v", err)
	}
}

func TestCreateAndGetPost(t *testing.T) {
	svc, _ := newTestPostService()

	created, err := svc.Create(context.Background(), 1, model.PostRequest{Title: "Hello", Content: "my very first post"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if created.UserID != 1 || created.ID == 0 {
		t.Errorf("unexpected created post %+v", created)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got.Title != "Hello" {
		t.Errorf("expected title Hello, got %q", got.Title)
	}
}

func TestUpdatePost_Ownership(t *testing.T) {
	svc, _ := newTestPostService()
	post, err := svc.Create(context.Background(), 1, model.PostRequest{Title: "Hello", Content: "my very first post"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	req := model.PostRequest{Title: "Edited", Content: "edited post content"}
	if _, err := svc.Update(context.Background(), 2, post.ID, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.Update(context.Background(), 1, post.ID, req)
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.Title != "Edited" {
		t.Errorf("expected title Edited, got %q", updated.Title)
	}

	if _, err := svc.Update(context.Background(), 1, 999, req); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	svc, _ := newTestPostService()
	post, err := svc.Create(context.Background(), 1, model.PostRequest{Title: "Hello", Content: "my very first post"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), 2, post.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), 1, post.ID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound after delete, got %v", err)
	}
}

func TestListPosts_Empty(t *testing.T) {
	svc, _ := newTestPostService()

	posts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("expected non-nil empty slice, got %v", posts)
	}
}

func TestDashboardStats(t *testing.T) {
	posts, postStore := newTestPostService()
	comments := &memCommentStore{}
	dash := NewDashboardService(postStore, comments)

	for i := 0; i < 7; i++ {
		if _, err := posts.Create(context.Background(), 1, model.PostRequest{
			Title:   fmt.Sprintf("Post %d", i),
			Content: "some post content here",
		}); err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
	}
	if _, err := posts.Create(context.Background(), 2, model.PostRequest{Title: "Other", Content: "someone else's post"}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	comments.comments = []model.Comment{{PostID: 1, UserID: 1}, {PostID: 1, UserID: 2}, {PostID: 2, UserID: 1}}

	stats, err := dash.Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("Stats() unexpected error: %v", err)
	}
	if stats.TotalPosts != 7 {
		t.Errorf("TotalPosts = %d, want 7", stats.TotalPosts)
	}
	if stats.TotalComments != 2 {
		t.Errorf("TotalComments = %d, want 2", stats.TotalComments)
	}
	if len(stats.RecentPosts) != recentPostsLimit {
		t.Fatalf("RecentPosts = %d, want %d", len(stats.RecentPosts), recentPostsLimit)
	}
	if stats.RecentPosts[0].Title != "Post 6" {
		t.Errorf("newest post = %q, want Post 6", stats.RecentPosts[0].Title)
	}
}
