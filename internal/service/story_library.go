package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storypal-server/internal/models"
	"storypal-server/internal/storage"
)

// ProfileDirectory is the slice of the registry the library depends on.
type ProfileDirectory interface {
	// List returns every profile in the registry.
	List(ctx context.Context) ([]models.Profile, error)

	// IncrementStoriesCompleted atomically bumps a profile's completed count.
	// Returns models.ErrProfileNotFound if the profile does not exist.
	IncrementStoriesCompleted(ctx context.Context, profileID string) error
}

// StoryLibrary persists finalized traversals per profile and serves replay
// and deletion.
type StoryLibrary interface {
	// Finalize consumes a completed progression into a new Story record,
	// persists it under the owning profile's stories key and increments that
	// profile's completed count. Returns models.ErrNotYetComplete if the
	// progression's current section is not terminal; no record is created in
	// that case. The library does not reach into the engine: after a
	// successful Finalize the caller drops the live progression via
	// ProgressionEngine.Abandon.
	Finalize(ctx context.Context, progression models.Progression, graph *models.StoryGraph) (*models.Story, error)

	// List returns the profile's stories ordered by lastPlayedAt descending,
	// ties broken by id ascending.
	List(ctx context.Context, profileID string) ([]models.Story, error)

	// Delete removes the story with the given id. Returns true if a record
	// existed and was removed; deleting an unknown id is not an error.
	Delete(ctx context.Context, storyID string) (bool, error)

	// DeleteAllForProfile removes every story owned by the profile. Invoked
	// as part of profile deletion, before the profile record is removed.
	DeleteAllForProfile(ctx context.Context, profileID string) error
}

type storyLibrary struct {
	gateway  storage.Gateway
	profiles ProfileDirectory
	logger   *zap.Logger
	now      func() time.Time

	// mu serializes every read-modify-write of a story list, so concurrent
	// Finalize and Delete calls cannot lose or resurrect records.
	mu sync.Mutex
}

// Compile-time check to ensure storyLibrary implements StoryLibrary
var _ StoryLibrary = (*storyLibrary)(nil)

// NewStoryLibrary creates a library over the persistence gateway.
func NewStoryLibrary(gateway storage.Gateway, profiles ProfileDirectory, logger *zap.Logger) StoryLibrary {
	return &storyLibrary{
		gateway:  gateway,
		profiles: profiles,
		logger:   logger.Named("StoryLibrary"),
		now:      time.Now,
	}
}

func (l *storyLibrary) loadStories(ctx context.Context, profileID string) ([]models.Story, error) {
	data, err := l.gateway.Get(ctx, storage.StoriesKey(profileID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return []models.Story{}, nil
		}
		return nil, fmt.Errorf("failed to load stories for profile %s: %w", profileID, err)
	}
	var stories []models.Story
	if err := json.Unmarshal(data, &stories); err != nil {
		return nil, fmt.Errorf("corrupted story list for profile %s: %w", profileID, err)
	}
	return stories, nil
}

func (l *storyLibrary) saveStories(ctx context.Context, profileID string, stories []models.Story) error {
	data, err := json.Marshal(stories)
	if err != nil {
		return fmt.Errorf("failed to encode story list for profile %s: %w", profileID, err)
	}
	if err := l.gateway.Set(ctx, storage.StoriesKey(profileID), data); err != nil {
		return fmt.Errorf("failed to persist story list for profile %s: %w", profileID, err)
	}
	return nil
}

func (l *storyLibrary) Finalize(ctx context.Context, progression models.Progression, graph *models.StoryGraph) (*models.Story, error) {
	log := l.logger.With(
		zap.String("profileID", progression.ProfileID),
		zap.String("graphID", progression.StoryGraphID),
	)

	section, ok := graph.Section(progression.CurrentSectionID)
	if !ok || !section.IsTerminal {
		log.Warn("Finalize called on incomplete progression",
			zap.String("currentSectionID", progression.CurrentSectionID))
		return nil, models.ErrNotYetComplete
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	story := models.Story{
		ID:                    uuid.NewString(),
		StoryGraphID:          progression.StoryGraphID,
		ProfileID:             progression.ProfileID,
		CreatedAt:             now,
		LastPlayedAt:          now,
		CompletionTimeMinutes: int(math.Round(now.Sub(progression.StartedAt).Minutes())),
		ChoiceHistory:         append([]string(nil), progression.ChoiceHistory...),
		IsCompleted:           true,
	}

	stories, err := l.loadStories(ctx, progression.ProfileID)
	if err != nil {
		return nil, err
	}
	stories = append(stories, story)
	if err := l.saveStories(ctx, progression.ProfileID, stories); err != nil {
		return nil, err
	}

	if err := l.profiles.IncrementStoriesCompleted(ctx, progression.ProfileID); err != nil {
		// The story record is already persisted; callers retry the
		// increment rather than assume a rollback happened.
		log.Error("Failed to increment completed count after finalize", zap.Error(err))
		return nil, fmt.Errorf("story persisted but count update failed: %w", err)
	}

	log.Info("Story finalized",
		zap.String("storyID", story.ID),
		zap.Int("choices", len(story.ChoiceHistory)),
		zap.Int("completionTimeMinutes", story.CompletionTimeMinutes),
	)
	return &story, nil
}

func (l *storyLibrary) List(ctx context.Context, profileID string) ([]models.Story, error) {
	stories, err := l.loadStories(ctx, profileID)
	if err != nil {
		return nil, err
	}
	sort.Slice(stories, func(i, j int) bool {
		if !stories[i].LastPlayedAt.Equal(stories[j].LastPlayedAt) {
			return stories[i].LastPlayedAt.After(stories[j].LastPlayedAt)
		}
		return stories[i].ID < stories[j].ID
	})
	return stories, nil
}

func (l *storyLibrary) Delete(ctx context.Context, storyID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// The store is keyed per profile, so locating a story means scanning
	// each profile's list until the id turns up.
	profiles, err := l.profiles.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list profiles while deleting story: %w", err)
	}

	for _, profile := range profiles {
		stories, err := l.loadStories(ctx, profile.ID)
		if err != nil {
			return false, err
		}
		filtered := stories[:0:0]
		found := false
		for _, s := range stories {
			if s.ID == storyID {
				found = true
				continue
			}
			filtered = append(filtered, s)
		}
		if !found {
			continue
		}
		if err := l.saveStories(ctx, profile.ID, filtered); err != nil {
			return false, err
		}
		l.logger.Info("Story deleted",
			zap.String("storyID", storyID),
			zap.String("profileID", profile.ID),
		)
		return true, nil
	}

	return false, nil
}

func (l *storyLibrary) DeleteAllForProfile(ctx context.Context, profileID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.gateway.Delete(ctx, storage.StoriesKey(profileID)); err != nil {
		return fmt.Errorf("failed to delete stories for profile %s: %w", profileID, err)
	}
	l.logger.Info("All stories deleted for profile", zap.String("profileID", profileID))
	return nil
}
