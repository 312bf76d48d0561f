// Package catalog owns the static story graph assets: loading them from the
// embedded YAML catalog, validating them once at startup, and handing out
// immutable graphs by id.
package catalog

import (
	"embed"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"storypal-server/internal/models"
)

//go:embed assets/*.yaml
var assetsFS embed.FS

// Catalog is the read-only set of story graphs available to the engine.
type Catalog struct {
	graphs map[string]*models.StoryGraph
	logger *zap.Logger
}

// Load parses and validates every embedded graph asset. A malformed graph is
// fatal: the error aborts startup instead of being handled per request.
func Load(logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{
		graphs: make(map[string]*models.StoryGraph),
		logger: logger.Named("Catalog"),
	}

	entries, err := assetsFS.ReadDir("assets")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded graph assets: %w", err)
	}

	for _, entry := range entries {
		data, err := assetsFS.ReadFile("assets/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read graph asset %s: %w", entry.Name(), err)
		}

		var graph models.StoryGraph
		if err := yaml.Unmarshal(data, &graph); err != nil {
			return nil, fmt.Errorf("failed to parse graph asset %s: %w", entry.Name(), err)
		}
		if graph.ID == "" {
			return nil, fmt.Errorf("graph asset %s has no id", entry.Name())
		}
		if _, exists := c.graphs[graph.ID]; exists {
			return nil, fmt.Errorf("duplicate graph id %q in asset %s", graph.ID, entry.Name())
		}

		// Section ids are the map keys in the asset; backfill them so
		// sections are self-describing.
		for id, section := range graph.Sections {
			section.ID = id
			graph.Sections[id] = section
		}

		if err := Validate(&graph); err != nil {
			return nil, fmt.Errorf("graph %q is invalid: %w", graph.ID, err)
		}

		c.graphs[graph.ID] = &graph
		c.logger.Debug("Loaded story graph",
			zap.String("graphID", graph.ID),
			zap.Int("sections", len(graph.Sections)),
		)
	}

	c.logger.Info("Story graph catalog loaded", zap.Int("graphs", len(c.graphs)))
	return c, nil
}

// GetGraph returns the graph with the given id.
// Returns models.ErrUnknownStoryGraph if absent.
func (c *Catalog) GetGraph(id string) (*models.StoryGraph, error) {
	graph, ok := c.graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownStoryGraph, id)
	}
	return graph, nil
}

// List returns all graphs ordered by id.
func (c *Catalog) List() []*models.StoryGraph {
	out := make([]*models.StoryGraph, 0, len(c.graphs))
	for _, g := range c.graphs {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
