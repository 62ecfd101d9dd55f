// Package types provides type definitions for structured data used throughout the resume builder.
package types

// SkillLevel is the self-assessed proficiency attached to a skill.
type SkillLevel string

// Skill levels accepted by the editor and the renderer.
const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

// Valid reports whether the level is one of the known levels.
func (l SkillLevel) Valid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert:
		return true
	default:
		return false
	}
}

// ResumeDocument is the canonical structured representation of a resume.
type ResumeDocument struct {
	PersonalInfo   PersonalInfo         `json:"personalInfo"`
	Education      []EducationEntry     `json:"education"`
	Experience     []ExperienceEntry    `json:"experience"`
	Skills         []SkillEntry         `json:"skills"`
	Projects       []ProjectEntry       `json:"projects"`
	Certifications []CertificationEntry `json:"certifications"`
}

// PersonalInfo holds the header fields of a resume.
// Only FirstName, LastName and Email are required for a complete document.
type PersonalInfo struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	LinkedinURL string `json:"linkedinUrl"`
	Summary     string `json:"summary"`
}

// EducationEntry is one row of the education section.
type EducationEntry struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa"`
	Description string `json:"description"`
}

// ExperienceEntry is one row of the experience section.
type ExperienceEntry struct {
	ID           string   `json:"id"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate" validate:"excluded_if=IsCurrent true"`
	IsCurrent    bool     `json:"isCurrent"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

// SkillEntry is one row of the skills section.
type SkillEntry struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Level SkillLevel `json:"level" validate:"oneof=beginner intermediate advanced expert"`
}

// ProjectEntry is one row of the projects section.
type ProjectEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Link         string `json:"link"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// CertificationEntry is one row of the certifications section.
type CertificationEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	Link   string `json:"link"`
}

// FullName joins first and last name with a single space, skipping empty parts.
func (p PersonalInfo) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// Clone returns a deep copy of the document. Empty sections stay empty rather than nil.
func (d *ResumeDocument) Clone() ResumeDocument {
	out := ResumeDocument{
		PersonalInfo:   d.PersonalInfo,
		Education:      cloneSlice(d.Education),
		Experience:     cloneSlice(d.Experience),
		Skills:         cloneSlice(d.Skills),
		Projects:       cloneSlice(d.Projects),
		Certifications: cloneSlice(d.Certifications),
	}
	for i := range out.Experience {
		out.Experience[i].Achievements = cloneSlice(out.Experience[i].Achievements)
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}
