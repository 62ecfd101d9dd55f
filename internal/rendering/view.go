package rendering

import "github.com/jonathan/resume-builder/internal/types"

// SectionKind identifies a rendered section.
type SectionKind string

// Section kinds in their fixed rendering order.
const (
	SectionSummary        SectionKind = "summary"
	SectionExperience     SectionKind = "experience"
	SectionEducation      SectionKind = "education"
	SectionSkills         SectionKind = "skills"
	SectionProjects       SectionKind = "projects"
	SectionCertifications SectionKind = "certifications"
)

// View is the laid-out form of a resume under one template.
type View struct {
	Template Template  `json:"template"`
	Style    Style     `json:"style"`
	Header   Header    `json:"header"`
	Sections []Section `json:"sections"`
}

// Header is the name and contact block.
type Header struct {
	Name     string   `json:"name"`
	Contacts []string `json:"contacts"` // email, phone, location in that order, empty values dropped
	Linkedin string   `json:"linkedin,omitempty"`
}

// Section is one rendered section. Summary sections use Text; skills use Skills;
// every other kind uses Items.
type Section struct {
	Kind   SectionKind  `json:"kind"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Items  []Item       `json:"items,omitempty"`
	Skills []SkillBadge `json:"skills,omitempty"`
}

// Item is one entry of a list section.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Location    string   `json:"location,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Description string   `json:"description,omitempty"`
	Details     []string `json:"details,omitempty"`
	Link        string   `json:"link,omitempty"`
	LinkLabel   string   `json:"linkLabel,omitempty"`
}

// SkillBadge is a rendered skill.
type SkillBadge struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Level types.SkillLevel `json:"level"`
	Label string           `json:"label,omitempty"` // level shown next to the name, empty when the template hides it
	Class string           `json:"class"`           // badge color class
}

// Section returns the section of the given kind, if rendered.
func (v View) Section(kind SectionKind) (Section, bool) {
	for _, s := range v.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// Kinds lists the rendered section kinds in order.
func (v View) Kinds() []SectionKind {
	kinds := make([]SectionKind, 0, len(v.Sections))
	for _, s := range v.Sections {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

// SummaryText returns the summary text, or "" when no summary section is rendered.
func (v View) SummaryText() string {
	if s, ok := v.Section(SectionSummary); ok {
		return s.Text
	}
	return ""
}
