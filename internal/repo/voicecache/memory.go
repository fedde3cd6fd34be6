package voicecache

import "sync"

// MemoryStore is the default in-process driver: a mutex-guarded map plus an
// insertion-order list for batch eviction of the oldest entries.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key Key) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	audio, ok := s.entries[key.String()]
	return audio, ok
}

func (s *MemoryStore) Put(key Key, audio []byte) {
	if !key.Cacheable() {
		return
	}
	k := key.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[k]; exists {
		s.entries[k] = audio
		return
	}
	if len(s.entries) >= MaxEntries {
		s.evictOldestLocked()
	}
	s.entries[k] = audio
	s.order = append(s.order, k)
}

func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) evictOldestLocked() {
	n := EvictBatch
	if n > len(s.order) {
		n = len(s.order)
	}
	for _, k := range s.order[:n] {
		delete(s.entries, k)
	}
	s.order = s.order[n:]
}
