package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storypal-server/internal/models"
	"storypal-server/internal/storage"
)

// CreateProfileParams carries the user-supplied fields for a new profile.
// Constraints follow the app's profile rules: short alphanumeric name, ages
// 2-8, free-text favorites capped at 50 characters.
type CreateProfileParams struct {
	Name               string   `validate:"required,min=1,max=20"`
	Age                int      `validate:"required,min=2,max=8"`
	Interests          []string `validate:"dive,min=1"`
	FavoriteCharacters string   `validate:"max=50"`
}

// UpdateProfileParams carries a partial profile edit; nil fields are left
// untouched.
type UpdateProfileParams struct {
	Name               *string `validate:"omitempty,min=1,max=20"`
	Age                *int    `validate:"omitempty,min=2,max=8"`
	Interests          []string
	FavoriteCharacters *string `validate:"omitempty,max=50"`
}

// ProfileRegistry manages the set of profiles and which one is active.
// Exactly one profile may be active at a time; that invariant holds across
// process restarts because every mutation is persisted as a single write of
// the whole list.
type ProfileRegistry interface {
	// Create adds a profile. The first profile ever created becomes active
	// automatically; later ones start inactive.
	Create(ctx context.Context, params CreateProfileParams) (*models.Profile, error)

	// List returns every profile, creation order preserved.
	List(ctx context.Context) ([]models.Profile, error)

	// Get returns the profile with the given id.
	// Returns models.ErrProfileNotFound if absent.
	Get(ctx context.Context, profileID string) (*models.Profile, error)

	// Active returns the currently active profile.
	// Returns models.ErrNoActiveProfile if none is active.
	Active(ctx context.Context) (*models.Profile, error)

	// Update applies a partial edit to the profile with the given id.
	Update(ctx context.Context, profileID string, params UpdateProfileParams) (*models.Profile, error)

	// SetActive marks the target active and every other profile inactive in
	// the same persisted write.
	SetActive(ctx context.Context, profileID string) error

	// Delete removes the profile and every story it owns. The stories are
	// purged before the profile record so the gateway is never left with
	// orphaned keys. If the deleted profile was active, no other profile is
	// promoted; the caller picks a new one.
	Delete(ctx context.Context, profileID string) error

	// IncrementStoriesCompleted atomically bumps the profile's completed
	// count. Used by StoryLibrary.Finalize.
	IncrementStoriesCompleted(ctx context.Context, profileID string) error
}

type profileRegistry struct {
	gateway  storage.Gateway
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time

	// mu serializes every read-modify-write of the profile list, so
	// concurrent SetActive and IncrementStoriesCompleted calls cannot lose
	// updates or leave two profiles active.
	mu sync.Mutex
}

// Compile-time checks
var (
	_ ProfileRegistry  = (*profileRegistry)(nil)
	_ ProfileDirectory = (*profileRegistry)(nil)
)

// NewProfileRegistry creates a registry over the persistence gateway.
func NewProfileRegistry(gateway storage.Gateway, logger *zap.Logger) ProfileRegistry {
	return &profileRegistry{
		gateway:  gateway,
		validate: validator.New(),
		logger:   logger.Named("ProfileRegistry"),
		now:      time.Now,
	}
}

func (r *profileRegistry) loadProfiles(ctx context.Context) ([]models.Profile, error) {
	data, err := r.gateway.Get(ctx, storage.ProfilesKey())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return []models.Profile{}, nil
		}
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	var profiles []models.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("corrupted profile list: %w", err)
	}
	return profiles, nil
}

func (r *profileRegistry) saveProfiles(ctx context.Context, profiles []models.Profile) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to encode profile list: %w", err)
	}
	if err := r.gateway.Set(ctx, storage.ProfilesKey(), data); err != nil {
		return fmt.Errorf("failed to persist profile list: %w", err)
	}
	return nil
}

func (r *profileRegistry) Create(ctx context.Context, params CreateProfileParams) (*models.Profile, error) {
	if err := r.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}

	profile := models.Profile{
		ID:                 uuid.NewString(),
		Name:               params.Name,
		Age:                params.Age,
		Interests:          append([]string(nil), params.Interests...),
		FavoriteCharacters: params.FavoriteCharacters,
		CreatedAt:          r.now().UTC(),
		StoriesCompleted:   0,
		IsActive:           len(profiles) == 0, // first profile becomes active
	}

	profiles = append(profiles, profile)
	if err := r.saveProfiles(ctx, profiles); err != nil {
		return nil, err
	}

	r.logger.Info("Profile created",
		zap.String("profileID", profile.ID),
		zap.String("name", profile.Name),
		zap.Bool("isActive", profile.IsActive),
	)
	return &profile, nil
}

func (r *profileRegistry) List(ctx context.Context) ([]models.Profile, error) {
	return r.loadProfiles(ctx)
}

func (r *profileRegistry) Get(ctx context.Context, profileID string) (*models.Profile, error) {
	profiles, err := r.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == profileID {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrProfileNotFound, profileID)
}

func (r *profileRegistry) Active(ctx context.Context) (*models.Profile, error) {
	profiles, err := r.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].IsActive {
			return &profiles[i], nil
		}
	}
	return nil, models.ErrNoActiveProfile
}

func (r *profileRegistry) Update(ctx context.Context, profileID string, params UpdateProfileParams) (*models.Profile, error) {
	if err := r.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		if profiles[i].ID != profileID {
			continue
		}
		if params.Name != nil {
			profiles[i].Name = *params.Name
		}
		if params.Age != nil {
			profiles[i].Age = *params.Age
		}
		if params.Interests != nil {
			profiles[i].Interests = append([]string(nil), params.Interests...)
		}
		if params.FavoriteCharacters != nil {
			profiles[i].FavoriteCharacters = *params.FavoriteCharacters
		}
		if err := r.saveProfiles(ctx, profiles); err != nil {
			return nil, err
		}
		updated := profiles[i]
		r.logger.Info("Profile updated", zap.String("profileID", profileID))
		return &updated, nil
	}

	return nil, fmt.Errorf("%w: %s", models.ErrProfileNotFound, profileID)
}

func (r *profileRegistry) SetActive(ctx context.Context, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.loadProfiles(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range profiles {
		if profiles[i].ID == profileID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", models.ErrProfileNotFound, profileID)
	}

	// All flags flip in one persisted write, so a restart can never observe
	// two active profiles or none where one was requested.
	for i := range profiles {
		profiles[i].IsActive = profiles[i].ID == profileID
	}
	if err := r.saveProfiles(ctx, profiles); err != nil {
		return err
	}

	r.logger.Info("Active profile changed", zap.String("profileID", profileID))
	return nil
}

func (r *profileRegistry) Delete(ctx context.Context, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.loadProfiles(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i := range profiles {
		if profiles[i].ID == profileID {
			index = i
			break
		}
	}
	if index == -1 {
		return fmt.Errorf("%w: %s", models.ErrProfileNotFound, profileID)
	}

	// Purge the profile's stories first; the gateway does no referential
	// integrity checking, so deleting the profile record first could leave
	// the stories key orphaned.
	if err := r.gateway.Delete(ctx, storage.StoriesKey(profileID)); err != nil {
		return fmt.Errorf("failed to delete stories for profile %s: %w", profileID, err)
	}

	wasActive := profiles[index].IsActive
	profiles = append(profiles[:index], profiles[index+1:]...)
	if err := r.saveProfiles(ctx, profiles); err != nil {
		return err
	}

	r.logger.Info("Profile deleted",
		zap.String("profileID", profileID),
		zap.Bool("wasActive", wasActive),
	)
	return nil
}

func (r *profileRegistry) IncrementStoriesCompleted(ctx context.Context, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.loadProfiles(ctx)
	if err != nil {
		return err
	}

	for i := range profiles {
		if profiles[i].ID != profileID {
			continue
		}
		profiles[i].StoriesCompleted++
		if err := r.saveProfiles(ctx, profiles); err != nil {
			return err
		}
		r.logger.Debug("Stories completed count incremented",
			zap.String("profileID", profileID),
			zap.Int("storiesCompleted", profiles[i].StoriesCompleted),
		)
		return nil
	}

	return fmt.Errorf("%w: %s", models.ErrProfileNotFound, profileID)
}
