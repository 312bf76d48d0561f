package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storypal-server/internal/models"
	"storypal-server/internal/storage"
)

func TestMemoryGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("get of absent key", func(t *testing.T) {
		gateway := storage.NewMemoryGateway()
		_, err := gateway.Get(ctx, "nope")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		gateway := storage.NewMemoryGateway()
		require.NoError(t, gateway.Set(ctx, "k", []byte("v1")))

		value, err := gateway.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), value)

		require.NoError(t, gateway.Set(ctx, "k", []byte("v2")))
		value, err = gateway.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), value)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		gateway := storage.NewMemoryGateway()
		require.NoError(t, gateway.Set(ctx, "k", []byte("abc")))

		value, err := gateway.Get(ctx, "k")
		require.NoError(t, err)
		value[0] = 'z'

		again, err := gateway.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		gateway := storage.NewMemoryGateway()
		require.NoError(t, gateway.Set(ctx, "k", []byte("v")))
		require.NoError(t, gateway.Delete(ctx, "k"))
		require.NoError(t, gateway.Delete(ctx, "k"))
		assert.Equal(t, 0, gateway.Len())
	})
}

func TestKeyConstruction(t *testing.T) {
	assert.Equal(t, "storypal_profiles", storage.ProfilesKey())
	assert.Equal(t, "storypal_stories_profile-1", storage.StoriesKey("profile-1"))
}
