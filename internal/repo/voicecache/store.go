// Package voicecache stores synthesized audio keyed by voice and utterance
// text, so repeated phrases skip the synthesis backend entirely. The cache is
// shared across all sessions; a miss under concurrent access is acceptable,
// corrupted bookkeeping is not, so every driver is safe for concurrent use.
package voicecache

import "strings"

const (
	// MaxEntries bounds the memory driver; exceeding it evicts EvictBatch
	// of the oldest-inserted entries.
	MaxEntries = 100
	EvictBatch = 20

	// MaxCacheableLen keeps large one-off utterances out of the cache.
	// Put is a no-op when the source text is at or above this length.
	MaxCacheableLen = 300
)

// Key identifies one cached utterance. Text is the raw (pre-normalization)
// reply text; normalization happens in String.
type Key struct {
	VoiceName string
	Language  string
	Text      string
}

func (k Key) String() string {
	return k.VoiceName + ":" + k.Language + ":" + strings.ToLower(strings.TrimSpace(k.Text))
}

// Cacheable reports whether the key's source text is short enough to store.
func (k Key) Cacheable() bool {
	return len(k.Text) < MaxCacheableLen
}

// Store is implemented by the memory and Redis drivers.
type Store interface {
	// Get returns the cached audio and true on a hit.
	Get(key Key) ([]byte, bool)
	// Put stores audio for key. Silently skipped for non-cacheable keys.
	Put(key Key, audio []byte)
	// Size returns the current entry count (approximate for remote drivers).
	Size() int
}
