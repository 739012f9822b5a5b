package kv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_ZeroValue(t *testing.T) {
	var m Map

	_, ok := m.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, m.GetString("missing"))
	assert.Zero(t, m.GetInt("missing"))
	assert.Zero(t, m.GetFloat("missing"))
	assert.False(t, m.GetBool("missing"))
	assert.Nil(t, m.GetStringSlice("missing"))
	assert.Empty(t, m.Keys())
	assert.NotNil(t, m.Snapshot())
}

func TestMap_Numbers(t *testing.T) {
	var m Map
	m.Put("int", 3306)
	m.Put("int64", int64(42))
	m.Put("whole", 30.0)
	m.Put("fraction", 0.3)

	assert.Equal(t, 3306, m.GetInt("int"))
	assert.Equal(t, 42, m.GetInt("int64"))
	assert.Equal(t, 30, m.GetInt("whole"))
	assert.Zero(t, m.GetInt("fraction"))

	assert.InDelta(t, 3306.0, m.GetFloat("int"), 1e-9)
	assert.InDelta(t, 42.0, m.GetFloat("int64"), 1e-9)
	assert.InDelta(t, 0.3, m.GetFloat("fraction"), 1e-9)
}

func TestMap_WrongTypesReadAsZero(t *testing.T) {
	var m Map
	m.Put("k", "not a number")

	assert.Zero(t, m.GetInt("k"))
	assert.Zero(t, m.GetFloat("k"))
	assert.False(t, m.GetBool("k"))
	assert.Nil(t, m.GetStringSlice("k"))

	m.Put("k", 7)
	assert.Empty(t, m.GetString("k"))
}

func TestMap_StringSlices(t *testing.T) {
	var m Map
	src := []string{"jam", "congestion"}
	m.Put("typed", src)
	m.Put("decoded", []any{"stampede", 7, "queue"})

	got := m.GetStringSlice("typed")
	got[0] = "changed"

	assert.Equal(t, []string{"jam", "congestion"}, m.GetStringSlice("typed"))
	assert.Equal(t, []string{"stampede", "queue"}, m.GetStringSlice("decoded"))
}

func TestMap_ReplaceAndSnapshotCopy(t *testing.T) {
	var m Map
	m.Put("old", 1)

	src := map[string]any{"b": true, "a": "x"}
	m.Replace(src)
	src["c"] = 3

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	snap := m.Snapshot()
	snap["a"] = "mutated"
	assert.Equal(t, "x", m.GetString("a"))
}

func TestMap_Concurrency(t *testing.T) {
	var m Map
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Put("n", i)
		}()
		go func() {
			defer wg.Done()
			_ = m.GetInt("n")
			_ = m.Snapshot()
		}()
	}
	wg.Wait()

	_, ok := m.Get("n")
	assert.True(t, ok)
}
