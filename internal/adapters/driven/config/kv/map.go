// Package kv is the dotted-key value map shared by the config stores.
// Values arrive from TOML decoding, from Set calls and from tests, so the
// typed getters accept every numeric width those sources produce.
package kv

import (
	"maps"
	"math"
	"slices"
	"sync"
)

// Map is safe for concurrent use. The zero value is empty and ready.
type Map struct {
	mu   sync.RWMutex
	data map[string]any
}

func (m *Map) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Put stores value under key.
func (m *Map) Put(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]any)
	}
	m.data[key] = value
}

// Replace swaps the whole content, e.g. after a reload.
func (m *Map) Replace(data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = maps.Clone(data)
}

// Snapshot returns a copy of the content.
func (m *Map) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := maps.Clone(m.data)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// Keys returns the stored keys in sorted order.
func (m *Map) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data))
}

func (m *Map) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

// GetInt accepts a float only when it is whole.
func (m *Map) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	return 0
}

// GetFloat also reads integers, so "temperature = 1" is 1.0.
func (m *Map) GetFloat(key string) float64 {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	}
	return 0
}

func (m *Map) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStringSlice reads []string or a decoded TOML array, skipping
// non-string elements.
func (m *Map) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	switch s := v.(type) {
	case []string:
		return slices.Clone(s)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
