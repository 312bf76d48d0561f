package models

import "time"

// Story is a persisted record of a completed traversal. It is created by
// finalizing a Progression and is independent of it from then on; one graph
// may produce many Stories across profiles and replays.
type Story struct {
	ID                    string    `json:"id"`
	StoryGraphID          string    `json:"storyGraphId"`
	ProfileID             string    `json:"profileId"`
	CreatedAt             time.Time `json:"createdAt"`
	LastPlayedAt          time.Time `json:"lastPlayedAt"`
	CompletionTimeMinutes int       `json:"completionTimeMinutes"`
	ChoiceHistory         []string  `json:"choiceHistory"`
	IsCompleted           bool      `json:"isCompleted"`
}
