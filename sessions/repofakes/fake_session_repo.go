package sessionrepofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-elearn-client/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory Repo. It also backs the "memory" session backend.
type FakeSessionRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		values: make(map[string]string),
	}
}

func (r *FakeSessionRepo) Get(_ context.Context, key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", sessions.ErrKeyNotFound
	}
	return v, nil
}

func (r *FakeSessionRepo) Set(_ context.Context, key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.values[key] = value
	return nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, key := range keys {
		delete(r.values, key)
	}
	return nil
}

// Has reports whether key is present. Test helper.
func (r *FakeSessionRepo) Has(key string) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	_, ok := r.values[key]
	return ok
}

// Len returns the number of stored keys. Test helper.
func (r *FakeSessionRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.values)
}
