package session

import (
	"sync"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/expense"
)

// Key identifies one independent editing context: one user in one chat.
type Key struct {
	ChatID int64
	UserID int64
}

// Store holds at most one draft per key. Acquire serializes handling
// for a single key so overlapping updates cannot interleave; callers
// hold the returned release for the whole interaction, including any
// ledger call, and nothing else.
type Store interface {
	Get(Key) (*expense.Draft, bool)
	Put(Key, *expense.Draft)
	Delete(Key)
	Acquire(Key) (release func())
}

// MemoryStore is the single-process implementation. Drafts have no
// expiry: they live until confirmed, cancelled or overwritten.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[Key]*expense.Draft
	locks  map[Key]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[Key]*expense.Draft),
		locks:  make(map[Key]*sync.Mutex),
	}
}

func (s *MemoryStore) Get(k Key) (*expense.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[k]
	return d, ok
}

func (s *MemoryStore) Put(k Key, d *expense.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[k] = d
}

func (s *MemoryStore) Delete(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, k)
}

// Acquire blocks until the key's lock is free. Per-key locks are kept
// forever; the key space is two users per family chat, so the map stays
// tiny.
func (s *MemoryStore) Acquire(k Key) func() {
	s.mu.Lock()
	l, ok := s.locks[k]
	if !ok {
		l = &sync.Mutex{}
		s.locks[k] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
