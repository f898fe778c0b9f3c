package lrucache

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func randString(r *rand.Rand, n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[r.Intn(len(letterRunes))]
	}
	return string(b)
}

func TestGetLoadsOnce(t *testing.T) {
	cache := New[string, int](16, 4, time.Hour)

	loads := 0
	loader := func() (*int, error) {
		loads++
		v := 42
		return &v, nil
	}

	v, err := cache.Get("answer", loader)
	require.NoError(t, err)
	assert.Equal(t, 42, *v)

	v, err = cache.Get("answer", loader)
	require.NoError(t, err)
	assert.Equal(t, 42, *v)
	assert.Equal(t, 1, loads)
	assert.True(t, cache.HasKey("answer"))
}

func TestGetPropagatesLoadError(t *testing.T) {
	cache := New[string, int](16, 4, time.Hour)
	boom := errors.New("boom")

	_, err := cache.Get("bad", func() (*int, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestGetCoalesces(t *testing.T) {
	cache := New[string, int](16, 4, time.Hour)

	var loads int32
	loader := func() (*int, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(50 * time.Millisecond)
		v := 7
		return &v, nil
	}

	wg := &sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cache.Get("k", loader)
			assert.NoError(t, err)
			assert.Equal(t, 7, *v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestEviction(t *testing.T) {
	shardSize := 8
	cache := New[string, int](shardSize, 4, time.Hour)
	r := rand.New(rand.NewSource(6))

	for i := 0; i < 1000; i++ {
		i := i
		key := randString(r, 12)
		v, err := cache.Get(key, func() (*int, error) { return &i, nil })
		require.NoError(t, err)
		assert.Equal(t, i, *v)
		assert.LessOrEqual(t, cache.ShardLen(key), shardSize)
	}
}

func TestTTLExpiry(t *testing.T) {
	cache := New[string, int](16, 4, 10*time.Millisecond)

	loads := 0
	loader := func() (*int, error) {
		loads++
		v := loads
		return &v, nil
	}

	v, err := cache.Get("k", loader)
	require.NoError(t, err)
	assert.Equal(t, 1, *v)

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cache.HasKey("k"))

	v, err = cache.Get("k", loader)
	require.NoError(t, err)
	assert.Equal(t, 2, *v)
	assert.Equal(t, 2, loads)
}

func TestRemove(t *testing.T) {
	cache := New[string, int](16, 4, time.Hour)

	v := 1
	_, err := cache.Get("k", func() (*int, error) { return &v, nil })
	require.NoError(t, err)

	assert.True(t, cache.Remove("k"))
	assert.False(t, cache.Remove("k"))
	assert.False(t, cache.HasKey("k"))
}
