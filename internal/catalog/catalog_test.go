package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storypal-server/internal/catalog"
	"storypal-server/internal/models"
)

func TestLoad(t *testing.T) {
	cat, err := catalog.Load(zap.NewNop())
	require.NoError(t, err)

	t.Run("embedded graphs are present and ordered", func(t *testing.T) {
		graphs := cat.List()
		require.Len(t, graphs, 3)
		assert.Equal(t, "forest_adventure", graphs[0].ID)
		assert.Equal(t, "ocean_quest", graphs[1].ID)
		assert.Equal(t, "space_journey", graphs[2].ID)
	})

	t.Run("forest adventure entry offers three paths", func(t *testing.T) {
		graph, err := cat.GetGraph("forest_adventure")
		require.NoError(t, err)
		assert.Equal(t, "The Magical Forest Quest", graph.Title)

		entry, ok := graph.Entry()
		require.True(t, ok)
		assert.Equal(t, "start", entry.ID)
		assert.False(t, entry.IsTerminal)
		require.Len(t, entry.Choices, 3)
		assert.Equal(t, "rabbit_path", entry.Choices[0].TargetSectionID)
		assert.Equal(t, "tree_path", entry.Choices[1].TargetSectionID)
		assert.Equal(t, "sound_path", entry.Choices[2].TargetSectionID)
	})

	t.Run("section ids are backfilled from asset keys", func(t *testing.T) {
		graph, err := cat.GetGraph("ocean_quest")
		require.NoError(t, err)
		for id, section := range graph.Sections {
			assert.Equal(t, id, section.ID)
		}
	})

	t.Run("unknown graph id", func(t *testing.T) {
		_, err := cat.GetGraph("missing_theme")
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrUnknownStoryGraph)
	})
}
