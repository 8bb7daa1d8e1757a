package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quillpost/quillpost-go/internal/model"
	"github.com/quillpost/quillpost-go/internal/repository"
)

type memUsers struct {
	mu     sync.Mutex
	byID   map[int64]model.User
	nextID int64
}

func (m *memUsers) conflict(u *model.User) error {
	for id, other := range m.byID {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
		if other.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(u); err != nil {
		return err
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) find(match func(model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Email == email })
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Username == username })
}

func (m *memUsers) Update(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(u); err != nil {
		return err
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID[id]
	u.PasswordHash = hash
	m.byID[id] = u
	return nil
}

type memPosts struct {
	mu     sync.Mutex
	byID   map[int64]model.Post
	nextID int64
}

func (m *memPosts) Create(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.byID[p.ID] = *p
	return nil
}

func (m *memPosts) GetByID(_ context.Context, id int64) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return &p, nil
}

func (m *memPosts) filter(keep func(model.Post) bool) []model.Post {
	out := []model.Post{}
	for _, p := range m.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memPosts) List(context.Context) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(model.Post) bool { return true }), nil
}

func (m *memPosts) ListRecentByUser(_ context.Context, userID int64, limit int) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(p model.Post) bool { return p.UserID == userID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPosts) CountByUser(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filter(func(p model.Post) bool { return p.UserID == userID })), nil
}

func (m *memPosts) Update(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = *p
	return nil
}

func (m *memPosts) Delete(_ context.Context, userID, postID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[postID]
	if !ok || p.UserID != userID {
		return repository.ErrPostNotFound
	}
	delete(m.byID, postID)
	return nil
}

type memComments struct {
	mu       sync.Mutex
	comments []model.Comment
}

func (m *memComments) Create(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.comments) + 1)
	m.comments = append(m.comments, *c)
	return nil
}

func (m *memComments) ListByPost(_ context.Context, postID int64) ([]model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memComments) CountByUser(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.comments {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}
