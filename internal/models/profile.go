package models

import "time"

// Profile is a user identity that owns completed stories. Exactly one profile
// in the registry may be active at a time.
type Profile struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Age                int       `json:"age"`
	Interests          []string  `json:"interests"`
	FavoriteCharacters string    `json:"favoriteCharacters"`
	CreatedAt          time.Time `json:"createdAt"`
	StoriesCompleted   int       `json:"storiesCompleted"`
	IsActive           bool      `json:"isActive"`
}
