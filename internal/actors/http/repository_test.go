package http

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/rbroggi/gestionusers/internal/core/model"
	"github.com/rbroggi/gestionusers/internal/core/ports"
)

// memoryRepository is an in-memory ports.Repository enforcing the nom and email unique indexes.
type memoryRepository struct {
	mu     sync.Mutex
	seq    int
	users  []model.User
	now    func() time.Time
	failOn error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{now: func() time.Time { return time.Date(2023, 4, 10, 12, 0, 0, 0, time.UTC) }}
}

func (m *memoryRepository) SaveUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return m.failOn
	}
	if err := m.checkUnique(user.Nom, user.Email, ""); err != nil {
		return err
	}
	m.seq++
	user.ID = fmt.Sprintf("%024x", m.seq)
	user.CreatedAt = m.now()
	user.UpdatedAt = user.CreatedAt
	m.users = append(m.users, *user)
	return nil
}

func (m *memoryRepository) UpdateUser(_ context.Context, id string, patch model.UserPatch) (*ports.UpdateUserResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return nil, m.failOn
	}
	i := m.indexOf(id)
	if i < 0 {
		return nil, model.ErrNotFound
	}
	before := m.users[i]
	after := patch.Apply(before, m.now())
	if err := m.checkUnique(after.Nom, after.Email, id); err != nil {
		return nil, err
	}
	m.users[i] = after
	return &ports.UpdateUserResult{Before: before, After: after}, nil
}

func (m *memoryRepository) ListUsers(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return nil, m.failOn
	}
	return append([]model.User(nil), m.users...), nil
}

func (m *memoryRepository) DeleteUser(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return nil, m.failOn
	}
	i := m.indexOf(id)
	if i < 0 {
		return nil, model.ErrNotFound
	}
	deleted := m.users[i]
	m.users = append(m.users[:i], m.users[i+1:]...)
	return &deleted, nil
}

func (m *memoryRepository) SearchUsers(_ context.Context, query ports.SearchUsersQuery) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return nil, m.failOn
	}
	matches := func(term, value string) bool {
		return term == "" || regexp.MustCompile("(?i)"+regexp.QuoteMeta(term)).MatchString(value)
	}
	var res []model.User
	for _, u := range m.users {
		if matches(query.Nom, u.Nom) && matches(query.Prenom, u.Prenom) {
			res = append(res, u)
		}
	}
	return res, nil
}

func (m *memoryRepository) indexOf(id string) int {
	for i, u := range m.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (m *memoryRepository) checkUnique(nom, email, exceptID string) error {
	for _, u := range m.users {
		if u.ID == exceptID {
			continue
		}
		if u.Nom == nom {
			return &model.DuplicateKeyError{Field: "nom", Err: fmt.Errorf("E11000 duplicate key error index: nom_1")}
		}
		if u.Email == email {
			return &model.DuplicateKeyError{Field: "email", Err: fmt.Errorf("E11000 duplicate key error index: email_1")}
		}
	}
	return nil
}
