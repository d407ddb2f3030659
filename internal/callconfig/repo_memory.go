package callconfig

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory repository useful for tests and local bring-up.
//
// NOTE: This is not intended for production; saved configurations would not
// survive a restart. Use the Redis or Postgres repository there.
type MemoryRepo struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{slots: make(map[string][]byte)}
}

func (r *MemoryRepo) Put(ctx context.Context, slotID string, data []byte) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	r.slots[slotID] = cp
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, slotID string) ([]byte, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.slots[slotID]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, slotID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, slotID)
	return nil
}
