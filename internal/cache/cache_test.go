package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestAsideFetchesOnceThenServesFromRedis(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *profile) func() error {
		return func() error {
			calls++
			*dest = profile{ID: 7, Username: "ana"}
			return nil
		}
	}

	var first profile
	require.NoError(t, c.Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	assert.Equal(t, "ana", first.Username)
	assert.True(t, mr.Exists("user:7"))

	var second profile
	require.NoError(t, c.Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestAsideReturnsFetchError(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")

	var p profile
	err := c.Aside(context.Background(), UserKey(1), &p, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:1"))
}

func TestInvalidateUsers(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, UserKey(1), profile{ID: 1}, UserTTL))
	require.NoError(t, c.SetJSON(ctx, UserKey(2), profile{ID: 2}, UserTTL))

	c.InvalidateUsers(ctx, 1, 2)
	assert.False(t, mr.Exists("user:1"))
	assert.False(t, mr.Exists("user:2"))
}

func TestNilClientAlwaysMisses(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	calls := 0
	var p profile
	require.NoError(t, c.Aside(ctx, UserKey(1), &p, UserTTL, func() error { calls++; return nil }))
	require.NoError(t, c.Aside(ctx, UserKey(1), &p, UserTTL, func() error { calls++; return nil }))
	assert.Equal(t, 2, calls)
	c.Invalidate(ctx, "anything")
}

func TestConnectUnreachableReturnsNil(t *testing.T) {
	assert.Nil(t, Connect("redis://:bad@127.0.0.1:1/0"))
}
