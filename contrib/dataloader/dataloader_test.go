package dataloader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record map[string]any

func idOf(r record) int { return r["id"].(int) }

func TestPick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keys    []int
		values  []record
		want    []string
		missing []int
	}{
		{
			name:   "reordered",
			keys:   []int{1, 2, 3},
			values: []record{{"id": 3, "name": "c"}, {"id": 1, "name": "a"}, {"id": 2, "name": "b"}},
			want:   []string{"a", "b", "c"},
		},
		{
			name:    "missing",
			keys:    []int{1, 2, 3, 4},
			values:  []record{{"id": 1, "name": "a"}, {"id": 3, "name": "c"}},
			want:    []string{"a", "", "c", ""},
			missing: []int{1, 3},
		},
		{
			name:   "duplicate keys",
			keys:   []int{1, 1, 2},
			values: []record{{"id": 1, "name": "a"}, {"id": 2, "name": "b"}},
			want:   []string{"a", "a", "b"},
		},
		{
			name: "empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, errs := Pick(tt.keys, tt.values, idOf)
			require.Len(t, got, len(tt.keys))
			require.Len(t, errs, len(tt.keys))
			for i := range tt.keys {
				if got[i] == nil {
					assert.Empty(t, tt.want[i])
					continue
				}
				assert.Equal(t, tt.want[i], got[i]["name"])
			}
			for i, err := range errs {
				if contains(tt.missing, i) {
					assert.ErrorIs(t, err, ErrNotFound)
				} else {
					assert.NoError(t, err)
				}
			}
		})
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func TestGroup(t *testing.T) {
	t.Parallel()
	items := []record{
		{"id": 1, "category": 10},
		{"id": 2, "category": 10},
		{"id": 3, "category": 20},
		{"id": 4, "category": 10},
	}
	categoryOf := func(r record) int { return r["category"].(int) }
	groups := Group([]int{20, 30, 10}, items, categoryOf)
	require.Len(t, groups, 3)
	require.Len(t, groups[0], 1)
	assert.Equal(t, 3, idOf(groups[0][0]))
	assert.Nil(t, groups[1])
	require.Len(t, groups[2], 3)
	assert.Equal(t, []int{1, 2, 4}, []int{idOf(groups[2][0]), idOf(groups[2][1]), idOf(groups[2][2])})

	assert.Equal(t, [][]record{nil}, Group([]int{10}, nil, categoryOf))
	assert.Empty(t, Group(nil, items, categoryOf))
}

type loaders struct {
	Category string
}

func TestWithLoaders(t *testing.T) {
	t.Parallel()
	ctx := WithLoaders(context.Background(), &loaders{Category: "c"})
	got := For[*loaders](ctx)
	require.NotNil(t, got)
	assert.Equal(t, "c", got.Category)
	assert.Nil(t, For[*loaders](context.Background()))
}

func TestLoader(t *testing.T) {
	t.Parallel()

	t.Run("batches concurrent loads", func(t *testing.T) {
		t.Parallel()
		var (
			calls atomic.Int32
			mu    sync.Mutex
			seen  [][]int
		)
		l := NewLoader(func(_ context.Context, keys []int) ([]record, []error) {
			calls.Add(1)
			mu.Lock()
			seen = append(seen, keys)
			mu.Unlock()
			var rs []record
			for _, k := range keys {
				if k != 3 {
					rs = append(rs, record{"id": k})
				}
			}
			return Pick(keys, rs, idOf)
		}, WithWait(20*time.Millisecond))

		values, errs := l.LoadMany(context.Background(), []int{1, 2, 3, 2})
		assert.Equal(t, int32(1), calls.Load())
		require.Len(t, seen, 1)
		assert.ElementsMatch(t, []int{1, 2, 3}, seen[0])
		assert.Equal(t, 1, idOf(values[0]))
		assert.Equal(t, 2, idOf(values[3]))
		assert.ErrorIs(t, errs[2], ErrNotFound)

		v, err := l.Load(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 1, idOf(v))
		assert.Equal(t, int32(1), calls.Load(), "cached")

		l.Clear(1)
		_, err = l.Load(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("max batch", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		l := NewLoader(func(_ context.Context, keys []int) ([]int, []error) {
			calls.Add(1)
			assert.LessOrEqual(t, len(keys), 2)
			return keys, nil
		}, WithWait(10*time.Millisecond), WithMaxBatch(2))
		values, errs := l.LoadMany(context.Background(), []int{1, 2, 3, 4, 5})
		assert.Equal(t, []int{1, 2, 3, 4, 5}, values)
		for _, err := range errs {
			assert.NoError(t, err)
		}
		assert.GreaterOrEqual(t, calls.Load(), int32(3))
	})

	t.Run("batch error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		l := NewLoader(func(context.Context, []int) ([]int, []error) {
			return nil, []error{boom}
		})
		_, errs := l.LoadMany(context.Background(), []int{1, 2})
		assert.ErrorIs(t, errs[0], boom)
		assert.ErrorIs(t, errs[1], boom)
	})

	t.Run("short result", func(t *testing.T) {
		t.Parallel()
		l := NewLoader(func(context.Context, []int) ([]int, []error) {
			return nil, nil
		})
		_, err := l.Load(context.Background(), 1)
		assert.ErrorContains(t, err, "batch returned 0 values for 1 keys")
	})

	t.Run("prime", func(t *testing.T) {
		t.Parallel()
		l := NewLoader(func(context.Context, []int) ([]string, []error) {
			t.Error("unexpected fetch")
			return nil, nil
		})
		l.Prime(7, "seven")
		l.Prime(7, "other")
		v, err := l.Load(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "seven", v)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		l := NewLoader(func(context.Context, []int) ([]int, []error) {
			return []int{1}, nil
		}, WithWait(time.Second))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := l.Load(ctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
