package models

// EntrySectionID is the reserved id of the section every traversal begins at.
const EntrySectionID = "start"

// StoryGraph is the immutable, pre-authored definition of a branching story:
// a set of narrative sections connected by discrete choices. Graphs are
// load-time assets and are never mutated by user interaction.
type StoryGraph struct {
	ID                string             `yaml:"id" json:"id"`
	Title             string             `yaml:"title" json:"title"`
	Description       string             `yaml:"description" json:"description"`
	AgeRange          string             `yaml:"ageRange" json:"ageRange"`
	EstimatedDuration string             `yaml:"estimatedDuration" json:"estimatedDuration"`
	Icon              string             `yaml:"icon" json:"icon"`
	Gradient          []string           `yaml:"gradient" json:"gradient"`
	Sections          map[string]Section `yaml:"sections" json:"sections"`
}

// Section is one narrative beat. Terminal sections end the story and carry no
// choices; non-terminal sections carry at least one.
type Section struct {
	ID         string   `yaml:"-" json:"id"`
	Text       string   `yaml:"text" json:"text"`
	IsTerminal bool     `yaml:"isTerminal" json:"isTerminal"`
	Choices    []Choice `yaml:"choices" json:"choices"`
}

// Choice is a labeled edge from one section to another.
type Choice struct {
	ID              string `yaml:"id" json:"id"`
	Label           string `yaml:"label" json:"label"`
	TargetSectionID string `yaml:"targetSectionId" json:"targetSectionId"`
}

// Section returns the section with the given id, if present.
func (g *StoryGraph) Section(id string) (Section, bool) {
	s, ok := g.Sections[id]
	return s, ok
}

// Entry returns the graph's entry section.
func (g *StoryGraph) Entry() (Section, bool) {
	return g.Section(EntrySectionID)
}

// Choice returns the choice with the given id among this section's choices.
func (s Section) Choice(id string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}
