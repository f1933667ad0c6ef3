//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedisContainer starts a Redis container and returns its address
func startRedisContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return container, fmt.Sprintf("%s:%s", host, port.Port())
}

func TestIntegration_RedisStore(t *testing.T) {
	ctx := context.Background()
	container, addr := startRedisContainer(t, ctx)
	defer container.Terminate(ctx)

	store, err := New(ctx, Config{
		Backend: BackendRedis,
		Redis:   RedisConfig{Addr: addr, Prefix: "test"},
	}, nil)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, "conferences")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "conferences", []byte(`{"conferences":[]}`), time.Second))

	value, ok, err := store.Get(ctx, "conferences")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"conferences":[]}`, string(value))

	assert.Eventually(t, func() bool {
		_, ok, err := store.Get(ctx, "conferences")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	stats := store.Stats()
	assert.Equal(t, int64(2), stats.Sets())
	assert.Equal(t, int64(1), stats.Deletes())
}

func TestIntegration_RedisUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
