package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hiring-pipeline/internal/testutil"
)

func TestRedisCacheRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	repo := NewRedisCacheRepoWithPrefix(client, "hp:")
	ctx := context.Background()

	t.Run("round trip under prefix", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "catalog:job:1", []byte(`{"id":"1"}`), 5*time.Minute))

		got, err := repo.Get(ctx, "catalog:job:1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1"}`, string(got))

		ttl := client.TTL(ctx, "hp:catalog:job:1").Val()
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, 5*time.Minute)
	})

	t.Run("miss is nil", func(t *testing.T) {
		got, err := repo.Get(ctx, "catalog:job:missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "catalog:question:q1", []byte("x"), time.Minute))

		existed, err := repo.Delete(ctx, "catalog:question:q1")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = repo.Delete(ctx, "catalog:question:q1")
		require.NoError(t, err)
		assert.False(t, existed)
	})

	assert.NoError(t, repo.Health(ctx))
}

func TestRedisCacheRepo_RejectsEmptyKey(t *testing.T) {
	repo := NewRedisCacheRepo(nil)
	ctx := context.Background()

	require.ErrorIs(t, repo.Set(ctx, "", nil, 0), ErrEmptyCacheKey)
	_, err := repo.Get(ctx, "")
	require.ErrorIs(t, err, ErrEmptyCacheKey)
	_, err = repo.Delete(ctx, "")
	require.ErrorIs(t, err, ErrEmptyCacheKey)
}
