package store

import (
	"context"
	"sync"

	"lyricdeck/internal/model"
)

// MemoryStore keeps the state in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	state   *model.State
	current *model.SlideIndex
}

// NewMemoryStore returns a store that starts out holding state, or a fresh
// state when state is nil.
func NewMemoryStore(state *model.State) *MemoryStore {
	if state == nil {
		state = model.NewState()
	}
	return &MemoryStore{state: state.Clone()}
}

func (m *MemoryStore) Load(ctx context.Context) (*model.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, state *model.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	return nil
}

func (m *MemoryStore) SaveCurrent(ctx context.Context, idx *model.SlideIndex) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx == nil {
		m.current = nil
		return nil
	}
	current := *idx
	m.current = &current
	return nil
}

func (m *MemoryStore) LoadCurrent(ctx context.Context) (*model.SlideIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, nil
	}
	current := *m.current
	return &current, nil
}
