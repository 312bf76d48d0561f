package models

import "time"

// Progression is the live, unfinished traversal state of one profile through
// one story graph. It exists only while the traversal is incomplete; at most
// one Progression per profile at a time. CurrentSectionID always names a
// valid section of the referenced graph, and ChoiceHistory holds exactly one
// entry per transition taken, in order.
type Progression struct {
	StoryGraphID     string    `json:"storyGraphId"`
	ProfileID        string    `json:"profileId"`
	CurrentSectionID string    `json:"currentSectionId"`
	ChoiceHistory    []string  `json:"choiceHistory"`
	StartedAt        time.Time `json:"startedAt"`
}

// Clone returns a deep copy so callers can hold the snapshot without
// aliasing the engine's live state.
func (p Progression) Clone() Progression {
	out := p
	out.ChoiceHistory = append([]string(nil), p.ChoiceHistory...)
	return out
}
