package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storypal-server/internal/models"
	"storypal-server/internal/service"
	"storypal-server/internal/storage"
)

func newTestRegistry() (service.ProfileRegistry, *storage.MemoryGateway) {
	gateway := storage.NewMemoryGateway()
	return service.NewProfileRegistry(gateway, zap.NewNop()), gateway
}

func TestProfileRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("first profile becomes active", func(t *testing.T) {
		registry, _ := newTestRegistry()

		p1, err := registry.Create(ctx, service.CreateProfileParams{Name: "Mia", Age: 5})
		require.NoError(t, err)
		assert.True(t, p1.IsActive)
		assert.Equal(t, 0, p1.StoriesCompleted)

		p2, err := registry.Create(ctx, service.CreateProfileParams{Name: "Leo", Age: 7})
		require.NoError(t, err)
		assert.False(t, p2.IsActive)

		active, err := registry.Active(ctx)
		require.NoError(t, err)
		assert.Equal(t, p1.ID, active.ID)
	})

	t.Run("create rejects invalid input", func(t *testing.T) {
		registry, _ := newTestRegistry()

		_, err := registry.Create(ctx, service.CreateProfileParams{Name: "", Age: 5})
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		_, err = registry.Create(ctx, service.CreateProfileParams{Name: "Mia", Age: 12})
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		profiles, err := registry.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})

	t.Run("setActive flips exactly one flag set", func(t *testing.T) {
		registry, _ := newTestRegistry()

		p1, err := registry.Create(ctx, service.CreateProfileParams{Name: "Mia", Age: 5})
		require.NoError(t, err)
		p2, err := registry.Create(ctx, service.CreateProfileParams{Name: "Leo", Age: 7})
		require.NoError(t, err)

		require.NoError(t, registry.SetActive(ctx, p2.ID))

		profiles, err := registry.List(ctx)
		require.NoError(t, err)
		activeCount := 0
		for _, p := range profiles {
			if p.IsActive {
				activeCount++
				assert.Equal(t, p2.ID, p.ID)
			}
		}
		assert.Equal(t, 1, activeCount)

		p1After, err := registry.Get(ctx, p1.ID)
		require.NoError(t, err)
		assert.False(t, p1After.IsActive)
	})

	t.Run("setActive with unknown id", func(t *testing.T) {
		registry, _ := newTestRegistry()
		err := registry.SetActive(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrProfileNotFound)
	})

	t.Run("update applies only the provided fields", func(t *testing.T) {
		registry, _ := newTestRegistry()

		p, err := registry.Create(ctx, service.CreateProfileParams{
			Name:      "Mia",
			Age:       5,
			Interests: []string{"animals"},
		})
		require.NoError(t, err)

		newAge := 6
		updated, err := registry.Update(ctx, p.ID, service.UpdateProfileParams{Age: &newAge})
		require.NoError(t, err)
		assert.Equal(t, 6, updated.Age)
		assert.Equal(t, "Mia", updated.Name)
		assert.Equal(t, []string{"animals"}, updated.Interests)
	})

	t.Run("delete removes the profile and its stories key", func(t *testing.T) {
		registry, gateway := newTestRegistry()

		p, err := registry.Create(ctx, service.CreateProfileParams{Name: "Mia", Age: 5})
		require.NoError(t, err)
		require.NoError(t, gateway.Set(ctx, storage.StoriesKey(p.ID), []byte(`[{"id":"s1"}]`)))

		require.NoError(t, registry.Delete(ctx, p.ID))

		_, err = registry.Get(ctx, p.ID)
		assert.ErrorIs(t, err, models.ErrProfileNotFound)

		_, err = gateway.Get(ctx, storage.StoriesKey(p.ID))
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("deleting the active profile promotes nobody", func(t *testing.T) {
		registry, _ := newTestRegistry()

		p1, err := registry.Create(ctx, service.CreateProfileParams{Name: "Mia", Age: 5})
		require.NoError(t, err)
		_, err = registry.Create(ctx, service.CreateProfileParams{Name: "Leo", Age: 7})
		require.NoError(t, err)

		require.NoError(t, registry.Delete(ctx, p1.ID))

		_, err = registry.Active(ctx)
		assert.ErrorIs(t, err, models.ErrNoActiveProfile)
	})

	t.Run("concurrent increments lose no updates", func(t *testing.T) {
		registry, _ := newTestRegistry()

		p, err := registry.Create(ctx, service.CreateProfileParams{Name: "Mia", Age: 5})
		require.NoError(t, err)

		const workers = 20
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				assert.NoError(t, registry.IncrementStoriesCompleted(ctx, p.ID))
			}()
		}
		wg.Wait()

		updated, err := registry.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, workers, updated.StoriesCompleted)
	})
}
