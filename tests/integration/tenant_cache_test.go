//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	tenancyapp "github.com/erp/backoffice/internal/application/tenancy"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	testcontainers.CleanupContainer(t, container)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return config.RedisConfig{Enabled: true, Host: host, Port: port.Int()}
}

func TestRedisTenantCache(t *testing.T) {
	redisCfg := startRedis(t)
	ctx := testutil.ContextWithTimeout(t, time.Minute)

	tc, err := cache.NewTenantCacheFactory(redisCfg,
		cache.WithLogger(zaptest.NewLogger(t)),
		cache.WithInMemoryFallback(false),
	).CreateCache(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tc.Close() })
	require.IsType(t, &cache.RedisTenantCache{}, tc)

	userID := testutil.NewTestUUID("redis-user")

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, tc.Set(ctx, userID, testutil.TenantA(), time.Minute))
		got, ok, err := tc.Get(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, testutil.TenantA(), got)

		require.NoError(t, tc.Delete(ctx, userID))
		_, ok, err = tc.Get(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("entries expire", func(t *testing.T) {
		require.NoError(t, tc.Set(ctx, userID, testutil.TenantB(), time.Second))
		testutil.RequireEventually(t, func() bool {
			_, ok, err := tc.Get(ctx, userID)
			return err == nil && !ok
		}, 5*time.Second, 100*time.Millisecond, "cached tenant never expired")
	})
}

func TestDirectory_SharesResolutionThroughRedis(t *testing.T) {
	redisCfg := startRedis(t)
	tdb := NewTestDB(t)
	ctx := testutil.ContextWithTimeout(t, time.Minute)
	log := zaptest.NewLogger(t)

	newDirectory := func() *tenancyapp.Directory {
		tc, err := cache.NewTenantCacheFactory(redisCfg, cache.WithInMemoryFallback(false)).CreateCache(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = tc.Close() })
		return tenancyapp.NewDirectory(persistence.NewGormMembershipRepository(tdb.DB), tc, time.Minute, log)
	}
	first, second := newDirectory(), newDirectory()

	userID := testutil.NewTestUUID("shared-user")
	require.NoError(t, first.SetDefault(ctx, userID, testutil.TenantA()))

	resolved, err := second.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, testutil.TenantA(), resolved)

	// Moving the membership through one instance is visible to the other
	require.NoError(t, second.SetDefault(ctx, userID, testutil.TenantB()))
	resolved, err = first.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, testutil.TenantB(), resolved)
}
