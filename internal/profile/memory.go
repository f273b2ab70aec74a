package profile

import (
	"container/list"
	"encoding/json"
	"sync"

	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// DefaultProfile is the key used when a request names no profile.
const DefaultProfile = "default"

// MemoryStore is the process-wide profile cache: a bounded LRU keyed by
// profile name. Two bounds hold at all times, a maximum entry count and
// a maximum aggregate serialized size; inserting past either bound
// evicts least-recently-used profiles one at a time until both hold
// again. Eviction is silent and there is no TTL. The store is not
// durable; restarts lose it.
//
// One mutex guards the map, the recency list, and the size accounting
// together so no reader ever observes them out of step.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recent
	totalBytes int

	maxEntries int
	maxBytes   int
	logger     *logger.Logger
}

type entry struct {
	profile string
	value   map[string]interface{}
	size    int
}

// NewMemoryStore creates an empty store with the given bounds.
// Non-positive bounds fall back to permissive defaults.
func NewMemoryStore(maxEntries, maxBytes int, log *logger.Logger) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &MemoryStore{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		logger:     log,
	}
}

// Get returns the profile's memory, or an empty object for an unknown
// profile. A hit counts as use and refreshes the profile's recency.
func (s *MemoryStore) Get(profile string) map[string]interface{} {
	if profile == "" {
		profile = DefaultProfile
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[profile]
	if !ok {
		return map[string]interface{}{}
	}
	s.order.MoveToFront(el)
	return el.Value.(*entry).value
}

// Set stores the profile's memory and returns the value as stored.
// Anything that is not a JSON object is coerced to an empty object.
func (s *MemoryStore) Set(profile string, value interface{}) map[string]interface{} {
	if profile == "" {
		profile = DefaultProfile
	}
	obj := coerce(value)
	size := sizeOf(obj)

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[profile]; ok {
		e := el.Value.(*entry)
		s.totalBytes += size - e.size
		e.value = obj
		e.size = size
		s.order.MoveToFront(el)
	} else {
		el := s.order.PushFront(&entry{profile: profile, value: obj, size: size})
		s.entries[profile] = el
		s.totalBytes += size
	}

	s.evict()
	return obj
}

// Len reports the current entry count.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// evict drops LRU entries until both bounds hold. Callers hold the
// mutex. The newest entry is never evicted to make room for itself; a
// single oversized profile simply occupies the whole byte budget.
func (s *MemoryStore) evict() {
	for s.order.Len() > 1 && (s.order.Len() > s.maxEntries || s.totalBytes > s.maxBytes) {
		el := s.order.Back()
		if el == nil {
			return
		}
		e := el.Value.(*entry)
		s.order.Remove(el)
		delete(s.entries, e.profile)
		s.totalBytes -= e.size

		s.logger.WithFields(map[string]interface{}{
			"profile": e.profile,
			"size":    e.size,
		}).Debug("Evicted profile memory")
	}
}

// coerce accepts only JSON objects; everything else becomes an empty
// object. A map[string]interface{} passes through, other object-shaped
// values round-trip through JSON.
func coerce(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case nil:
		return map[string]interface{}{}
	case map[string]interface{}:
		return v
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return map[string]interface{}{}
		}
		var obj map[string]interface{}
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return map[string]interface{}{}
		}
		return obj
	}
}

// sizeOf is the serialized footprint used for the byte bound. A value
// that fails to marshal counts as zero.
func sizeOf(obj map[string]interface{}) int {
	raw, err := json.Marshal(obj)
	if err != nil {
		return 0
	}
	return len(raw)
}
