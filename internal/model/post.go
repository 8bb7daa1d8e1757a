package model

import "time"

// Post represents a blog post in the database.
type Post struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostRequest is the body of both create and update requests.
type PostRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required,min=10,max=65535"`
}

// PostResponse represents a post returned by the API.
type PostResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Response converts the stored post to its API shape.
func (p *Post) Response() PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// DashboardStats summarizes the authenticated user's activity.
type DashboardStats struct {
	TotalPosts    int            `json:"totalPosts"`
	TotalComments int            `json:"totalComments"`
	RecentPosts   []PostResponse `json:"recentPosts"`
}
