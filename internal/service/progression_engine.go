// Package service implements the branching-story core: the progression
// engine, the story library and the profile registry.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"storypal-server/internal/catalog"
	"storypal-server/internal/models"
)

// ProgressionEngine walks a profile through a story graph: Start enters the
// graph at its entry section, Choose follows one choice edge, IsComplete
// reports whether the traversal has reached a terminal section.
//
// For a given profile all mutating calls are serialized internally; two
// concurrent Choose calls can never double-append to the choice history.
type ProgressionEngine interface {
	// Start begins a traversal of the given graph for the profile. Any prior
	// live progression owned by the profile is discarded, not archived.
	// Returns models.ErrUnknownStoryGraph if the graph id is not in the catalog.
	Start(ctx context.Context, graphID, profileID string) (models.Progression, error)

	// Choose applies the choice with the given id to the profile's live
	// progression. Returns models.ErrUnknownChoice if the id does not belong
	// to the current section; the progression is left completely unchanged on
	// any error.
	Choose(ctx context.Context, profileID, choiceID string) (models.Progression, error)

	// Current returns a snapshot of the profile's live progression.
	// Returns models.ErrNoLiveProgression if there is none.
	Current(profileID string) (models.Progression, error)

	// Abandon drops the profile's live progression, if any. Abandoning is a
	// valid terminal outcome and needs no other signal.
	Abandon(profileID string)

	// IsComplete reports whether the progression's current section is
	// terminal in the given graph.
	IsComplete(progression models.Progression, graph *models.StoryGraph) bool
}

type progressionEngine struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	live  map[string]*models.Progression
	locks map[string]*sync.Mutex
}

// Compile-time check to ensure progressionEngine implements ProgressionEngine
var _ ProgressionEngine = (*progressionEngine)(nil)

// NewProgressionEngine creates an engine over a pre-validated graph catalog.
func NewProgressionEngine(cat *catalog.Catalog, logger *zap.Logger) ProgressionEngine {
	return &progressionEngine{
		catalog: cat,
		logger:  logger.Named("ProgressionEngine"),
		now:     time.Now,
		live:    make(map[string]*models.Progression),
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing all mutating calls for one profile.
func (e *progressionEngine) lockFor(profileID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[profileID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[profileID] = l
	}
	return l
}

func (e *progressionEngine) Start(ctx context.Context, graphID, profileID string) (models.Progression, error) {
	log := e.logger.With(zap.String("graphID", graphID), zap.String("profileID", profileID))

	graph, err := e.catalog.GetGraph(graphID)
	if err != nil {
		log.Warn("Start requested for unknown graph")
		return models.Progression{}, err
	}
	entry, ok := graph.Entry()
	if !ok {
		// Catalog validation guarantees an entry section; reaching this
		// means the graph was not loaded through the catalog.
		return models.Progression{}, fmt.Errorf("%w: %s has no entry section", models.ErrUnknownSection, graphID)
	}

	lock := e.lockFor(profileID)
	lock.Lock()
	defer lock.Unlock()

	progression := &models.Progression{
		StoryGraphID:     graphID,
		ProfileID:        profileID,
		CurrentSectionID: entry.ID,
		ChoiceHistory:    []string{},
		StartedAt:        e.now().UTC(),
	}

	if prior, exists := e.live[profileID]; exists {
		log.Info("Discarding prior unfinished progression",
			zap.String("priorGraphID", prior.StoryGraphID),
			zap.Int("priorChoices", len(prior.ChoiceHistory)),
		)
	}
	e.live[profileID] = progression

	log.Info("Progression started")
	return progression.Clone(), nil
}

func (e *progressionEngine) Choose(ctx context.Context, profileID, choiceID string) (models.Progression, error) {
	log := e.logger.With(zap.String("profileID", profileID), zap.String("choiceID", choiceID))

	lock := e.lockFor(profileID)
	lock.Lock()
	defer lock.Unlock()

	progression, ok := e.live[profileID]
	if !ok {
		return models.Progression{}, models.ErrNoLiveProgression
	}

	graph, err := e.catalog.GetGraph(progression.StoryGraphID)
	if err != nil {
		return models.Progression{}, err
	}
	section, ok := graph.Section(progression.CurrentSectionID)
	if !ok {
		return models.Progression{}, fmt.Errorf("%w: %s", models.ErrUnknownSection, progression.CurrentSectionID)
	}

	// Guards against stale UI state: a choice id rendered for a previous
	// section is rejected without touching the history.
	choice, ok := section.Choice(choiceID)
	if !ok {
		log.Warn("Choice does not belong to current section",
			zap.String("currentSectionID", progression.CurrentSectionID))
		return models.Progression{}, fmt.Errorf("%w: %s", models.ErrUnknownChoice, choiceID)
	}

	// Validate-then-commit: both writes happen only after the choice
	// resolved, so a failed call never leaves a partial append.
	progression.ChoiceHistory = append(progression.ChoiceHistory, choice.ID)
	progression.CurrentSectionID = choice.TargetSectionID

	if target, _ := graph.Section(choice.TargetSectionID); target.IsTerminal {
		log.Info("Progression reached terminal section",
			zap.String("sectionID", choice.TargetSectionID),
			zap.Int("choices", len(progression.ChoiceHistory)),
		)
	}

	return progression.Clone(), nil
}

func (e *progressionEngine) Current(profileID string) (models.Progression, error) {
	lock := e.lockFor(profileID)
	lock.Lock()
	defer lock.Unlock()

	progression, ok := e.live[profileID]
	if !ok {
		return models.Progression{}, models.ErrNoLiveProgression
	}
	return progression.Clone(), nil
}

func (e *progressionEngine) Abandon(profileID string) {
	lock := e.lockFor(profileID)
	lock.Lock()
	defer lock.Unlock()

	if _, ok := e.live[profileID]; ok {
		delete(e.live, profileID)
		e.logger.Info("Progression abandoned", zap.String("profileID", profileID))
	}
}

func (e *progressionEngine) IsComplete(progression models.Progression, graph *models.StoryGraph) bool {
	section, ok := graph.Section(progression.CurrentSectionID)
	return ok && section.IsTerminal
}
