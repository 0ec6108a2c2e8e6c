// Package kvtest provides conformance tests for kv.Store implementations
package kvtest

import (
	"context"
	"testing"
	"time"

	"github.com/staysocial/staysocial-backend/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory creates a fresh Store instance for testing
type StoreFactory func(t *testing.T) kv.Store

// RunConformanceTests runs all conformance tests against a Store implementation
func RunConformanceTests(t *testing.T, factory StoreFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, store kv.Store)
	}{
		{"SetGet", testSetGet},
		{"GetNonExistent", testGetNonExistent},
		{"Overwrite", testOverwrite},
		{"Del", testDel},
		{"Exists", testExists},
		{"TTLExpiry", testTTLExpiry},
		{"TTLReporting", testTTLReporting},
		{"Expire", testExpire},
		{"ListPushRange", testListPushRange},
		{"ListTrim", testListTrim},
		{"ListWrongType", testListWrongType},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			tt.test(t, store)
		})
	}
}

func testSetGet(t *testing.T, store kv.Store) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "test:string", []byte("hello world")))

	got, err := store.Get(ctx, "test:string")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), got)
}

func testGetNonExistent(t *testing.T, store kv.Store) {
	_, err := store.Get(context.Background(), "test:missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testOverwrite(t *testing.T, store kv.Store) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "test:overwrite", []byte("one"), time.Hour))
	require.NoError(t, store.Set(ctx, "test:overwrite", []byte("two")))

	got, err := store.Get(ctx, "test:overwrite")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	// Overwriting without a TTL clears the old expiry
	ttl, err := store.TTL(ctx, "test:overwrite")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}

func testDel(t *testing.T, store kv.Store) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "test:del:1", []byte("a")))
	require.NoError(t, store.Set(ctx, "test:del:2", []byte("b")))

	n, err := store.Del(ctx, "test:del:1", "test:del:2", "test:del:missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.Get(ctx, "test:del:1")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testExists(t *testing.T, store kv.Store) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "test:exists", []byte("a")))
	_, err := store.LPush(ctx, "test:exists:list", []byte("x"))
	require.NoError(t, err)

	n, err := store.Exists(ctx, "test:exists", "test:exists:list", "test:exists:missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func testTTLExpiry(t *testing.T, store kv.Store) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "test:ttl", []byte("short"), 1100*time.Millisecond))

	_, err := store.Get(ctx, "test:ttl")
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	_, err = store.Get(ctx, "test:ttl")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testTTLReporting(t *testing.T, store kv.Store) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "test:ttl:set", []byte("v"), time.Minute))
	ttl, err := store.TTL(ctx, "test:ttl:set")
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)

	_, err = store.TTL(ctx, "test:ttl:missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testExpire(t *testing.T, store kv.Store) {
	ctx := context.Background()

	ok, err := store.Expire(ctx, "test:expire:missing", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "test:expire", []byte("v")))
	ok, err = store.Expire(ctx, "test:expire", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := store.TTL(ctx, "test:expire")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func testListPushRange(t *testing.T, store kv.Store) {
	ctx := context.Background()

	_, err := store.LRange(ctx, "test:list", 0, -1)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	n, err := store.LPush(ctx, "test:list", []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.LPush(ctx, "test:list", []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	all, err := store.LRange(ctx, "test:list", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c"), []byte("b"), []byte("a")}, all)

	head, err := store.LRange(ctx, "test:list", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c")}, head)

	tail, err := store.LRange(ctx, "test:list", -2, 10)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("b"), []byte("a")}, tail)

	empty, err := store.LRange(ctx, "test:list", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testListTrim(t *testing.T, store kv.Store) {
	ctx := context.Background()

	for _, v := range []string{"1", "2", "3", "4", "5"} {
		_, err := store.LPush(ctx, "test:trim", []byte(v))
		require.NoError(t, err)
	}

	require.NoError(t, store.LTrim(ctx, "test:trim", 0, 2))

	kept, err := store.LRange(ctx, "test:trim", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("5"), []byte("4"), []byte("3")}, kept)

	require.NoError(t, store.LTrim(ctx, "test:trim:missing", 0, 2))
}

func testListWrongType(t *testing.T, store kv.Store) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "test:wrongtype", []byte("v")))
	_, err := store.LPush(ctx, "test:wrongtype", []byte("x"))
	assert.ErrorIs(t, err, kv.ErrWrongType)
}

func testPing(t *testing.T, store kv.Store) {
	assert.NoError(t, store.Ping(context.Background()))
}
