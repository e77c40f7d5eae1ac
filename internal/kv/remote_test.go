package kv

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniqueNamespace keeps concurrent runs against a shared server apart.
func uniqueNamespace(prefix string) string {
	return fmt.Sprintf("%s%d_", prefix, time.Now().UnixNano())
}

// exerciseNamespacedClear checks that Clear on a leaves b untouched.
func exerciseNamespacedClear(t *testing.T, a, b Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "posts", "[]"))
	require.NoError(t, b.Set(ctx, "posts", `["kept"]`))
	require.NoError(t, a.Clear(ctx))

	_, ok, err := a.Get(ctx, "posts")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := b.Get(ctx, "posts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["kept"]`, v)

	require.NoError(t, b.Clear(ctx))
}

func TestMatchPatternEscapesGlob(t *testing.T) {
	assert.Equal(t, "@tk_*", matchPattern("@tk_"))
	assert.Equal(t, `a\*b\?c\[d\]e\\f*`, matchPattern(`a*b?c[d]e\f`))
	assert.Equal(t, "*", matchPattern(""))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ns := uniqueNamespace("@tk_test_")
	r, err := NewRedis(addr, os.Getenv("TEST_REDIS_PASSWORD"), 0, ns)
	require.NoError(t, err)
	defer r.Close()

	exerciseStore(t, r)
	assert.NoError(t, r.Ping(context.Background()))

	// "*" in a namespace must not widen Clear to other prefixes.
	wild, err := NewRedis(addr, os.Getenv("TEST_REDIS_PASSWORD"), 0, ns+"*")
	require.NoError(t, err)
	defer wild.Close()
	exerciseNamespacedClear(t, wild, r)

	other, err := NewRedis(addr, os.Getenv("TEST_REDIS_PASSWORD"), 0, uniqueNamespace("@other_"))
	require.NoError(t, err)
	defer other.Close()
	exerciseNamespacedClear(t, r, other)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_KV_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_KV_DATABASE_URL not set")
	}
	ctx := context.Background()

	p, err := NewPostgres(ctx, url, uniqueNamespace("@tk_test_"))
	require.NoError(t, err)
	defer p.Close()

	exerciseStore(t, p)
	assert.NoError(t, p.Ping(ctx))

	other, err := NewPostgres(ctx, url, uniqueNamespace("@other_"))
	require.NoError(t, err)
	defer other.Close()
	exerciseNamespacedClear(t, p, other)
}
