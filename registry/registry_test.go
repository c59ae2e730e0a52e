package registry_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddals/registry"
)

type key struct {
	model   string
	purpose string
}

func (k key) String() string { return k.model + "/" + k.purpose }

func TestRegisterFirstWriteWins(t *testing.T) {
	r := registry.New[key, string]()
	k := key{"Item", "output"}

	_, ok := r.Lookup(k)
	assert.False(t, ok, "lookup before population reports absence")

	assert.True(t, r.Register(k, "v1"))
	v, ok := r.Lookup(k)
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	assert.False(t, r.Register(k, "v2"))
	v, _ = r.Lookup(k)
	assert.Equal(t, "v1", v)
	assert.Equal(t, 1, r.Len())
}

func TestKeysOrder(t *testing.T) {
	r := registry.New[key, int]()
	r.Register(key{"B", "filter"}, 1)
	r.Register(key{"A", "output"}, 2)
	r.Register(key{"B", "filter"}, 3)
	assert.Equal(t, []key{{"B", "filter"}, {"A", "output"}}, r.Keys())
}

func TestLoadOrStore(t *testing.T) {
	r := registry.New[key, *int]()
	k := key{"Item", "filter"}
	var builds atomic.Int32
	build := func() (*int, error) {
		builds.Add(1)
		n := 42
		return &n, nil
	}

	var wg sync.WaitGroup
	results := make([]*int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := r.LoadOrStore(k, build)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()
	for _, v := range results {
		assert.Same(t, results[0], v)
	}
	v, err := r.LoadOrStore(k, build)
	require.NoError(t, err)
	assert.Same(t, results[0], v)
	assert.Equal(t, 1, r.Len())
	assert.LessOrEqual(t, builds.Load(), int32(16))
}

func TestLoadOrStoreError(t *testing.T) {
	r := registry.New[key, string]()
	k := key{"Item", "order"}
	_, err := r.LoadOrStore(k, func() (string, error) { return "", errors.New("boom") })
	require.EqualError(t, err, "boom")
	_, ok := r.Lookup(k)
	assert.False(t, ok, "failed builds are not registered")

	v, err := r.LoadOrStore(k, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
