package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	IDs   []uint64 `json:"ids"`
	Total int64    `json:"total"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "ideas:p1", page{IDs: []uint64{1, 2}, Total: 2}, 0))

	var got page
	found, err := cache.Get(ctx, "ideas:p1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []uint64{1, 2}, got.IDs)
}

func TestCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	var got page
	found, err := cache.Get(context.Background(), "missing", &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCache_TTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", page{}, 0))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	found, _ := cache.Get(ctx, "k", &page{})
	assert.False(t, found)
}

func TestCache_Version(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	assert.Equal(t, int64(0), cache.GetVersion(ctx, "user:1:ideas:version"))
	cache.IncrementVersion(ctx, "user:1:ideas:version")
	cache.IncrementVersion(ctx, "user:1:ideas:version")
	assert.Equal(t, int64(2), cache.GetVersion(ctx, "user:1:ideas:version"))
}

func TestCache_NilClientIsNoop(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	assert.NoError(t, cache.Set(ctx, "k", 1, 0))
	found, err := cache.Get(ctx, "k", new(int))
	assert.NoError(t, err)
	assert.False(t, found)
	cache.IncrementVersion(ctx, "v")
	assert.Equal(t, int64(0), cache.GetVersion(ctx, "v"))
}
