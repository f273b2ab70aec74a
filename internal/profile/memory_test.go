package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

func obj(kv ...string) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func TestMemoryStore_GetUnknownReturnsEmptyObject(t *testing.T) {
	s := NewMemoryStore(10, 0, logger.NewNop())

	got := s.Get("nobody")
	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, s.Len(), "a miss must not create an entry")
}

func TestMemoryStore_SetThenGet(t *testing.T) {
	s := NewMemoryStore(10, 0, logger.NewNop())

	stored := s.Set("sharp", obj("lean", "unders"))
	assert.Equal(t, obj("lean", "unders"), stored)
	assert.Equal(t, obj("lean", "unders"), s.Get("sharp"))
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_EmptyProfileMapsToDefault(t *testing.T) {
	s := NewMemoryStore(10, 0, logger.NewNop())

	s.Set("", obj("k", "v"))
	assert.Equal(t, obj("k", "v"), s.Get(DefaultProfile))
	assert.Equal(t, obj("k", "v"), s.Get(""))
}

func TestMemoryStore_EntryCountEviction(t *testing.T) {
	s := NewMemoryStore(2, 0, logger.NewNop())

	s.Set("a", obj("k", "a"))
	s.Set("b", obj("k", "b"))
	s.Set("c", obj("k", "c"))

	assert.Equal(t, 2, s.Len())
	assert.Empty(t, s.Get("a"), "a was least recently used and must be gone")
	assert.Equal(t, obj("k", "b"), s.Get("b"))
	assert.Equal(t, obj("k", "c"), s.Get("c"))
}

func TestMemoryStore_GetRefreshesRecency(t *testing.T) {
	s := NewMemoryStore(2, 0, logger.NewNop())

	s.Set("a", obj("k", "a"))
	s.Set("b", obj("k", "b"))
	s.Get("a") // touch: b is now the LRU
	s.Set("c", obj("k", "c"))

	assert.Equal(t, obj("k", "a"), s.Get("a"))
	assert.Empty(t, s.Get("b"))
	assert.Equal(t, obj("k", "c"), s.Get("c"))
}

func TestMemoryStore_SetRefreshesRecency(t *testing.T) {
	s := NewMemoryStore(2, 0, logger.NewNop())

	s.Set("a", obj("k", "a"))
	s.Set("b", obj("k", "b"))
	s.Set("a", obj("k", "a2")) // rewrite counts as use
	s.Set("c", obj("k", "c"))

	assert.Equal(t, obj("k", "a2"), s.Get("a"))
	assert.Empty(t, s.Get("b"))
}

func TestMemoryStore_ByteBoundEviction(t *testing.T) {
	// Each entry serializes to 107 bytes, so two fit and three do not.
	big := strings.Repeat("x", 100)
	s := NewMemoryStore(0, 250, logger.NewNop())

	s.Set("a", obj("k", big))
	s.Set("b", obj("k", big))
	s.Set("c", obj("k", big))

	assert.Equal(t, 2, s.Len())
	assert.Empty(t, s.Get("a"))
}

func TestMemoryStore_OversizedEntrySurvivesAlone(t *testing.T) {
	huge := strings.Repeat("x", 1000)
	s := NewMemoryStore(0, 250, logger.NewNop())

	stored := s.Set("whale", obj("k", huge))
	// The newest entry is never evicted to make room for itself.
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, stored, s.Get("whale"))
}

func TestMemoryStore_CoercesNonObjects(t *testing.T) {
	s := NewMemoryStore(10, 0, logger.NewNop())

	tests := []struct {
		name  string
		value interface{}
	}{
		{"nil", nil},
		{"array", []interface{}{1, 2, 3}},
		{"string", "not an object"},
		{"number", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := s.Set("p", tt.value)
			require.NotNil(t, stored)
			assert.Empty(t, stored)
		})
	}
}
