// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the messages service.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"messages-service/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
)

// MockMessageRepository implements domain.MessageRepository for testing.
// With no Func overrides it behaves like a small in-memory store.
type MockMessageRepository struct {
	mu     sync.RWMutex
	nextID int64

	// Function overrides - set these to customize behavior
	FindAllFunc  func(ctx context.Context) ([]*domain.Message, error)
	FindByIDFunc func(ctx context.Context, id int64) (*domain.Message, error)
	CountFunc    func(ctx context.Context) (int64, error)
	CreateFunc   func(ctx context.Context, text string) (*domain.Message, error)
	SaveFunc     func(ctx context.Context, message *domain.Message) (*domain.Message, error)
	RemoveFunc   func(ctx context.Context, message *domain.Message) error

	// Now supplies timestamps; defaults to time.Now
	Now func() time.Time

	// In-memory storage for simple tests
	Messages map[int64]*domain.Message

	// Call counters
	Calls map[string]int
}

// NewMockMessageRepository creates a new MockMessageRepository with initialized maps
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		Messages: make(map[int64]*domain.Message),
		Calls:    make(map[string]int),
	}
}

// Seed stores copies of the given messages, advancing the id sequence past them
func (m *MockMessageRepository) Seed(messages ...*domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()

	for _, msg := range messages {
		stored := *msg
		m.Messages[stored.ID] = &stored
		if stored.ID > m.nextID {
			m.nextID = stored.ID
		}
	}
}

// CallCount returns how many times the named method ran
func (m *MockMessageRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Calls[method]
}

func (m *MockMessageRepository) FindAll(ctx context.Context) ([]*domain.Message, error) {
	m.record("FindAll")
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*domain.Message, 0, len(m.Messages))
	for _, msg := range m.Messages {
		stored := *msg
		result = append(result, &stored)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id int64) (*domain.Message, error) {
	m.record("FindByID")
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	msg, ok := m.Messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	stored := *msg
	return &stored, nil
}

func (m *MockMessageRepository) Count(ctx context.Context) (int64, error) {
	m.record("Count")
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.Messages)), nil
}

func (m *MockMessageRepository) Create(ctx context.Context, text string) (*domain.Message, error) {
	m.record("Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()

	m.nextID++
	now := m.now()
	msg := &domain.Message{
		ID:          m.nextID,
		MessageText: text,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.Messages[msg.ID] = msg

	stored := *msg
	return &stored, nil
}

func (m *MockMessageRepository) Save(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	m.record("Save")
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Messages[message.ID]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}

	updatedAt := m.now()
	if !updatedAt.After(existing.UpdatedAt) {
		updatedAt = existing.UpdatedAt.Add(time.Microsecond)
	}
	existing.MessageText = message.MessageText
	existing.UpdatedAt = updatedAt

	stored := *existing
	return &stored, nil
}

func (m *MockMessageRepository) Remove(ctx context.Context, message *domain.Message) error {
	m.record("Remove")
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Messages[message.ID]; !ok {
		return domain.ErrMessageNotFound
	}
	delete(m.Messages, message.ID)
	return nil
}

func (m *MockMessageRepository) init() {
	if m.Messages == nil {
		m.Messages = make(map[int64]*domain.Message)
	}
}

func (m *MockMessageRepository) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[method]++
}

func (m *MockMessageRepository) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}
