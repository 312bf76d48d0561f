package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storypal-server/internal/catalog"
	"storypal-server/internal/models"
	"storypal-server/internal/service"
)

func newTestEngine(t *testing.T) (service.ProgressionEngine, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Load(zap.NewNop())
	require.NoError(t, err)
	return service.NewProgressionEngine(cat, zap.NewNop()), cat
}

func TestProgressionEngine(t *testing.T) {
	ctx := context.Background()
	const profileID = "profile-1"

	t.Run("start enters the graph at the entry section", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		progression, err := engine.Start(ctx, "forest_adventure", profileID)
		require.NoError(t, err)
		assert.Equal(t, "forest_adventure", progression.StoryGraphID)
		assert.Equal(t, profileID, progression.ProfileID)
		assert.Equal(t, models.EntrySectionID, progression.CurrentSectionID)
		assert.Empty(t, progression.ChoiceHistory)
		assert.False(t, progression.StartedAt.IsZero())
	})

	t.Run("start with unknown graph", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.Start(ctx, "missing_theme", profileID)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrUnknownStoryGraph)
	})

	t.Run("choosing through to the picnic ending", func(t *testing.T) {
		engine, cat := newTestEngine(t)
		graph, err := cat.GetGraph("forest_adventure")
		require.NoError(t, err)

		_, err = engine.Start(ctx, "forest_adventure", profileID)
		require.NoError(t, err)

		progression, err := engine.Choose(ctx, profileID, "choice1")
		require.NoError(t, err)
		assert.Equal(t, "rabbit_path", progression.CurrentSectionID)
		assert.False(t, engine.IsComplete(progression, graph))

		progression, err = engine.Choose(ctx, profileID, "choice4")
		require.NoError(t, err)
		assert.Equal(t, "picnic_ending", progression.CurrentSectionID)
		assert.Equal(t, []string{"choice1", "choice4"}, progression.ChoiceHistory)
		assert.True(t, engine.IsComplete(progression, graph))
	})

	t.Run("history length always matches choose calls", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.Start(ctx, "ocean_quest", profileID)
		require.NoError(t, err)

		progression, err := engine.Choose(ctx, profileID, "choice2")
		require.NoError(t, err)
		assert.Len(t, progression.ChoiceHistory, 1)

		progression, err = engine.Choose(ctx, profileID, "choice6")
		require.NoError(t, err)
		assert.Len(t, progression.ChoiceHistory, 2)
	})

	t.Run("unknown choice leaves the progression unchanged", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.Start(ctx, "forest_adventure", profileID)
		require.NoError(t, err)
		before, err := engine.Current(profileID)
		require.NoError(t, err)

		// choice4 belongs to rabbit_path, not to the entry section; stale
		// UI state must be rejected without touching the history.
		_, err = engine.Choose(ctx, profileID, "choice4")
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrUnknownChoice)

		after, err := engine.Current(profileID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("choose without a live progression", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.Choose(ctx, "nobody", "choice1")
		assert.ErrorIs(t, err, models.ErrNoLiveProgression)
	})

	t.Run("start replaces a prior unfinished progression", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.Start(ctx, "forest_adventure", profileID)
		require.NoError(t, err)
		_, err = engine.Choose(ctx, profileID, "choice1")
		require.NoError(t, err)

		progression, err := engine.Start(ctx, "ocean_quest", profileID)
		require.NoError(t, err)
		assert.Equal(t, "ocean_quest", progression.StoryGraphID)
		assert.Empty(t, progression.ChoiceHistory)

		current, err := engine.Current(profileID)
		require.NoError(t, err)
		assert.Equal(t, "ocean_quest", current.StoryGraphID)
	})

	t.Run("abandon drops the live progression", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.Start(ctx, "forest_adventure", profileID)
		require.NoError(t, err)

		engine.Abandon(profileID)

		_, err = engine.Current(profileID)
		assert.ErrorIs(t, err, models.ErrNoLiveProgression)

		// Abandoning again is a no-op.
		engine.Abandon(profileID)
	})

	t.Run("returned snapshots do not alias live state", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.Start(ctx, "forest_adventure", profileID)
		require.NoError(t, err)
		snapshot, err := engine.Choose(ctx, profileID, "choice1")
		require.NoError(t, err)

		snapshot.ChoiceHistory[0] = "tampered"
		snapshot.CurrentSectionID = "tampered"

		current, err := engine.Current(profileID)
		require.NoError(t, err)
		assert.Equal(t, []string{"choice1"}, current.ChoiceHistory)
		assert.Equal(t, "rabbit_path", current.CurrentSectionID)
	})
}
