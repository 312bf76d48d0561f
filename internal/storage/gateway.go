// Package storage defines the persistence gateway the core talks to: a
// narrow, swappable key/value contract plus the key construction rules.
// Backends cover local device storage (sqlite), remote stores (redis,
// postgres) and an in-memory map for tests and ephemeral runs.
package storage

import "context"

// Gateway is the durable key/value contract consumed by the registry, the
// library and the engine. Implementations perform no referential-integrity
// checking of their own; cascades are the callers' responsibility.
type Gateway interface {
	// Get returns the value stored under key.
	// Returns models.ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value. The write is
	// atomic per key: readers observe either the old or the new value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Key construction is part of the gateway's contract and lives only here.
// The scheme is the original installation's storage layout, kept so existing
// data stays readable.
const (
	profilesKey    = "storypal_profiles"
	storiesKeyBase = "storypal_stories_"
)

// ProfilesKey returns the key holding the full profile registry list.
func ProfilesKey() string { return profilesKey }

// StoriesKey returns the key holding a profile's completed story list.
func StoriesKey(profileID string) string { return storiesKeyBase + profileID }
