package catalog

import (
	"fmt"

	"storypal-server/internal/models"
)

// Graph validation errors. A failed check means the static asset is
// malformed; loading must abort rather than let a broken graph surface as a
// runtime failure mid-traversal.

// MissingEntryError reports a graph without the reserved entry section.
type MissingEntryError struct {
	GraphID string
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("story graph %q has no %q section", e.GraphID, models.EntrySectionID)
}

// DanglingChoiceError reports a choice whose target section does not exist.
type DanglingChoiceError struct {
	SectionID string
	ChoiceID  string
	TargetID  string
}

func (e *DanglingChoiceError) Error() string {
	return fmt.Sprintf("choice %q in section %q targets missing section %q", e.ChoiceID, e.SectionID, e.TargetID)
}

// DeadEndError reports a non-terminal section with no choices.
type DeadEndError struct {
	SectionID string
}

func (e *DeadEndError) Error() string {
	return fmt.Sprintf("non-terminal section %q has no choices", e.SectionID)
}

// TerminalWithChoicesError reports a terminal section that still offers choices.
type TerminalWithChoicesError struct {
	SectionID string
}

func (e *TerminalWithChoicesError) Error() string {
	return fmt.Sprintf("terminal section %q must not have choices", e.SectionID)
}

// UnreachableTerminalError reports a terminal section that cannot be reached
// from the entry section.
type UnreachableTerminalError struct {
	SectionID string
}

func (e *UnreachableTerminalError) Error() string {
	return fmt.Sprintf("terminal section %q is unreachable from %q", e.SectionID, models.EntrySectionID)
}

// Validate checks a story graph's structural invariants. It is a pure
// function and runs once when the asset is loaded; the progression engine
// assumes a validated graph and does not re-check per step.
//
// Checks, in order: the entry section exists; every choice target exists;
// every non-terminal section has at least one choice; every terminal section
// has none; every terminal section is reachable from the entry section.
// Cycles are legal, so reachability is a breadth-first walk over choice
// edges with a visited set.
func Validate(graph *models.StoryGraph) error {
	entry, ok := graph.Entry()
	if !ok {
		return &MissingEntryError{GraphID: graph.ID}
	}

	for id, section := range graph.Sections {
		for _, choice := range section.Choices {
			if _, ok := graph.Section(choice.TargetSectionID); !ok {
				return &DanglingChoiceError{SectionID: id, ChoiceID: choice.ID, TargetID: choice.TargetSectionID}
			}
		}
	}

	for id, section := range graph.Sections {
		if !section.IsTerminal && len(section.Choices) == 0 {
			return &DeadEndError{SectionID: id}
		}
	}

	for id, section := range graph.Sections {
		if section.IsTerminal && len(section.Choices) > 0 {
			return &TerminalWithChoicesError{SectionID: id}
		}
	}

	visited := map[string]bool{entry.ID: true}
	queue := []string{entry.ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		section, _ := graph.Section(current)
		for _, choice := range section.Choices {
			if !visited[choice.TargetSectionID] {
				visited[choice.TargetSectionID] = true
				queue = append(queue, choice.TargetSectionID)
			}
		}
	}
	for id, section := range graph.Sections {
		if section.IsTerminal && !visited[id] {
			return &UnreachableTerminalError{SectionID: id}
		}
	}

	return nil
}
