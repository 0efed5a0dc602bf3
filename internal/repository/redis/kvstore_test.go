package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/profilesync/internal/config"
	"github.com/Rrens/profilesync/internal/storage/storagetest"
)

// newTestClient connects to REDIS_ADDR (host:port) or skips.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := NewClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestKVStore_Contract(t *testing.T) {
	client := newTestClient(t)
	store := NewKVStore(client, fmt.Sprintf("profilesync-test:%d:", time.Now().UnixNano()), 0)
	t.Cleanup(func() { store.Flush(context.Background()) })

	storagetest.Run(t, store)
}

func TestKVStore_PrefixIsolation(t *testing.T) {
	client := newTestClient(t)
	base := fmt.Sprintf("profilesync-test:%d:", time.Now().UnixNano())
	a := NewKVStore(client, base+"a:", 0)
	b := NewKVStore(client, base+"b:", 0)
	t.Cleanup(func() {
		a.Flush(context.Background())
		b.Flush(context.Background())
	})

	ctx := context.Background()
	require.NoError(t, a.Set(ctx, "access_token", "A"))

	_, found, err := b.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.False(t, found)

	n, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestKVStore_TTL(t *testing.T) {
	client := newTestClient(t)
	store := NewKVStore(client, fmt.Sprintf("profilesync-test:%d:", time.Now().UnixNano()), time.Minute)
	t.Cleanup(func() { store.Flush(context.Background()) })

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "refresh_token", "r"))

	ttl, err := client.Client().TTL(ctx, store.key("refresh_token")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
