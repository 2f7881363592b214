package lockmgr

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ValentinKolb/restkv/lib/store"
)

// memStore is a minimal in-memory store.IStore for testing
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	return m.SetE(context.Background(), key, value, 0)
}

func (m *memStore) SetE(_ context.Context, key string, value []byte, _ uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memStore) SetEIfUnset(_ context.Context, key string, value []byte, _ uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *memStore) SetMany(ctx context.Context, entries []store.Entry) error {
	for _, e := range entries {
		if err := m.SetE(ctx, e.Key, e.Value, e.ExpireIn); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) Expire(_ context.Context, key string, _ uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, m.err
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return m.err
}

func (m *memStore) DeleteIfEquals(_ context.Context, key string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if current, ok := m.data[key]; ok && bytes.Equal(current, value) {
		delete(m.data, key)
		return true, nil
	}
	return false, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, m.err
}

func (m *memStore) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, m.err
}

func TestAcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager(newMemStore())

	ok, ownerID, err := lm.AcquireLock(ctx, "resource", 0)
	if err != nil || !ok {
		t.Fatalf("Failed to acquire lock: ok=%v err=%v", ok, err)
	}
	if len(ownerID) != bitLength/4 {
		t.Errorf("Expected a hex owner ID of %d characters, got %d", bitLength/4, len(ownerID))
	}

	// the lock is held
	ok, _, err = lm.AcquireLock(ctx, "resource", 0)
	if err != nil || ok {
		t.Errorf("Expected second acquire to fail: ok=%v err=%v", ok, err)
	}

	// a foreign owner can not release
	ok, err = lm.ReleaseLock(ctx, "resource", "someone-else")
	if err != nil || ok {
		t.Errorf("Expected release with wrong owner to fail: ok=%v err=%v", ok, err)
	}

	ok, err = lm.ReleaseLock(ctx, "resource", ownerID)
	if err != nil || !ok {
		t.Errorf("Failed to release lock: ok=%v err=%v", ok, err)
	}

	// releasing a missing lock is fine
	ok, err = lm.ReleaseLock(ctx, "resource", ownerID)
	if err != nil || !ok {
		t.Errorf("Expected release of a missing lock to succeed: ok=%v err=%v", ok, err)
	}

	// the lock can be acquired again
	ok, _, err = lm.AcquireLock(ctx, "resource", 0)
	if err != nil || !ok {
		t.Errorf("Failed to re-acquire lock: ok=%v err=%v", ok, err)
	}
}

func TestAcquireConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// a new lock manager for every caller works on the same locks
			ok, _, err := NewLockManager(s).AcquireLock(ctx, "resource", 10)
			if err != nil {
				t.Errorf("Failed to acquire lock: %v", err)
				return
			}
			if ok {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Errorf("Expected exactly one owner, got %d", acquired)
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	s.err = errors.New("store down")
	lm := NewLockManager(s)

	if ok, _, err := lm.AcquireLock(ctx, "resource", 0); err == nil || ok {
		t.Errorf("Expected acquire to fail: ok=%v err=%v", ok, err)
	}
	if ok, err := lm.ReleaseLock(ctx, "resource", "owner"); err == nil || ok {
		t.Errorf("Expected release to fail: ok=%v err=%v", ok, err)
	}
}

func TestGenerateOwnerID(t *testing.T) {
	a, err := generateOwnerID()
	if err != nil {
		t.Fatalf("Failed to generate owner ID: %v", err)
	}
	b, err := generateOwnerID()
	if err != nil {
		t.Fatalf("Failed to generate owner ID: %v", err)
	}
	if a == b {
		t.Errorf("Expected unique owner IDs")
	}
}
