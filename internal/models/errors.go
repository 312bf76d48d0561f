package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/Storage Errors
	ErrNotFound = errors.New("resource not found") // General not found

	// Catalog Errors
	ErrUnknownStoryGraph = errors.New("unknown story graph")

	// Progression Errors
	ErrUnknownChoice     = errors.New("choice does not belong to the current section")
	ErrUnknownSection    = errors.New("section does not exist in the story graph")
	ErrNoLiveProgression = errors.New("no live progression for this profile")

	// Library Errors
	ErrNotYetComplete = errors.New("progression has not reached a terminal section")
	ErrStoryNotFound  = errors.New("story not found")

	// Profile Errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoActiveProfile = errors.New("no active profile")
	ErrInvalidInput    = errors.New("invalid input data")
)
