package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quillpost/quillpost-go/internal/model"
	"github.com/quillpost/quillpost-go/internal/repository"
)

// memUserStore is an in-memory UserStore enforcing the same unique keys as
// the MySQL schema.
type memUserStore struct {
	mu      sync.Mutex
	users   map[int64]model.User
	nextID  int64
	updates int
	err     error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]model.User)}
}

func (m *memUserStore) conflict(u *model.User) error {
	for id, other := range m.users {
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

func (m *memUserStore) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := m.conflict(u); err != nil {
		return err
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = *u
	return nil
}

func (m *memUserStore) find(match func(model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.ID == id })
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Email == email })
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Username == username })
}

func (m *memUserStore) Update(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := m.conflict(u); err != nil {
		return err
	}
	m.users[u.ID] = *u
	m.updates++
	return nil
}

func (m *memUserStore) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.PasswordHash = hash
	m.users[id] = u
	m.updates++
	return nil
}

func (m *memUserStore) stored(id int64) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

type memPostStore struct {
	mu     sync.Mutex
	posts  map[int64]model.Post
	nextID int64
}

func newMemPostStore() *memPostStore {
	return &memPostStore{posts: make(map[int64]model.Post)}
}

func (m *memPostStore) Create(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	m.posts[p.ID] = *p
	return nil
}

func (m *memPostStore) GetByID(_ context.Context, id int64) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return &p, nil
}

func (m *memPostStore) sorted(filter func(model.Post) bool) []model.Post {
	var out []model.Post
	for _, p := range m.posts {
		if filter(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memPostStore) List(_ context.Context) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(model.Post) bool { return true }), nil
}

func (m *memPostStore) ListRecentByUser(_ context.Context, userID int64, limit int) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sorted(func(p model.Post) bool { return p.UserID == userID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPostStore) CountByUser(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sorted(func(p model.Post) bool { return p.UserID == userID })), nil
}

func (m *memPostStore) Update(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = *p
	return nil
}

func (m *memPostStore) Delete(_ context.Context, userID, postID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok || p.UserID != userID {
		return repository.ErrPostNotFound
	}
	delete(m.posts, postID)
	return nil
}

type memCommentStore struct {
	mu       sync.Mutex
	comments []model.Comment
}

func (m *memCommentStore) Create(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.comments) + 1)
	m.comments = append(m.comments, *c)
	return nil
}

func (m *memCommentStore) ListByPost(_ context.Context, postID int64) ([]model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCommentStore) CountByUser(_ context.Context, userID int64) (int, error) {
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
