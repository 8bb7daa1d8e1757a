// Package client talks to the QuillPost API on behalf of a signed-in user and
// keeps the local session in step with the server's answers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quillpost/quillpost-go/internal/model"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
	// TokenRejected is set when the bearer middleware refused the token.
	TokenRejected bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Client is a QuillPost API client bound to a Session.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	session *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API rooted at baseURL (for example
// "http://localhost:8080/api").
func New(baseURL string, session *Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the session the client reads and updates.
func (c *Client) Session() *Session {
	return c.session
}

// Register creates an account and signs in as it.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/users/register", false, req, &resp); err != nil {
		return model.UserResponse{}, err
	}
	if err := c.session.Establish(ctx, resp.User, resp.Token); err != nil {
		return model.UserResponse{}, err
	}
	return resp.User, nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.UserResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", false, req, &resp); err != nil {
		return model.UserResponse{}, err
	}
	if err := c.session.Establish(ctx, resp.User, resp.Token); err != nil {
		return model.UserResponse{}, err
	}
	return resp.User, nil
}

// Logout discards the local session. Tokens are not revoked server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.SetUser(ctx, nil)
}

// Me fetches the signed-in user and refreshes the cached copy.
func (c *Client) Me(ctx context.Context) (model.UserResponse, error) {
	if _, err := c.session.RequireAuth(); err != nil {
		return model.UserResponse{}, err
	}

	var user model.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/me", true, nil, &user); err != nil {
		return model.UserResponse{}, err
	}
	return user, c.session.SetUser(ctx, &user)
}

// UpdateProfile changes the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (model.UserResponse, error) {
	current, err := c.session.RequireAuth()
	if err != nil {
		return model.UserResponse{}, err
	}

	var user model.UserResponse
	path := "/users/" + strconv.FormatInt(current.ID, 10)
	if err := c.do(ctx, http.MethodPut, path, true, req, &user); err != nil {
		return model.UserResponse{}, err
	}
	return user, c.session.SetUser(ctx, &user)
}

// ListPosts returns all posts, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]model.PostResponse, error) {
	var posts []model.PostResponse
	err := c.do(ctx, http.MethodGet, "/blogs", true, nil, &posts)
	return posts, err
}

// GetPost returns one post.
func (c *Client) GetPost(ctx context.Context, id int64) (model.PostResponse, error) {
	var post model.PostResponse
	err := c.do(ctx, http.MethodGet, "/blogs/"+strconv.FormatInt(id, 10), true, nil, &post)
	return post, err
}

// CreatePost publishes a post as the signed-in user.
func (c *Client) CreatePost(ctx context.Context, req model.PostRequest) (model.PostResponse, error) {
	var post model.PostResponse
	err := c.do(ctx, http.MethodPost, "/blogs", true, req, &post)
	return post, err
}

// UpdatePost edits one of the signed-in user's posts.
func (c *Client) UpdatePost(ctx context.Context, id int64, req model.PostRequest) (model.PostResponse, error) {
	var post model.PostResponse
	err := c.do(ctx, http.MethodPut, "/blogs/"+strconv.FormatInt(id, 10), true, req, &post)
	return post, err
}

// DeletePost removes one of the signed-in user's posts.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/blogs/"+strconv.FormatInt(id, 10), true, nil, nil)
}

// ListComments returns the comments of a post.
func (c *Client) ListComments(ctx context.Context, postID int64) ([]model.CommentResponse, error) {
	var comments []model.CommentResponse
	path := "/comments?post_id=" + strconv.FormatInt(postID, 10)
	err := c.do(ctx, http.MethodGet, path, true, nil, &comments)
	return comments, err
}

// CreateComment comments on a post as the signed-in user.
func (c *Client) CreateComment(ctx context.Context, req model.CommentRequest) (model.CommentResponse, error) {
	var comment model.CommentResponse
	err := c.do(ctx, http.MethodPost, "/comments", true, req, &comment)
	return comment, err
}

// DashboardStats returns the signed-in user's activity summary.
func (c *Client) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats
	err := c.do(ctx, http.MethodGet, "/dashboard/stats", true, nil, &stats)
	return stats, err
}

// do sends one request. Protected requests carry the stored token when there
// is one; a token rejection from the server signs the session out.
func (c *Client) do(ctx context.Context, method, path string, protected bool, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if protected {
		token, err := c.session.Token(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		if protected && apiErr.TokenRejected {
			if err := c.session.SetUser(ctx, nil); err != nil {
				return errors.Join(apiErr, err)
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		Status: resp.StatusCode,
		TokenRejected: resp.StatusCode == http.StatusUnauthorized &&
			strings.HasPrefix(resp.Header.Get("WWW-Authenticate"), "Bearer"),
	}

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Fields = body.Fields
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
