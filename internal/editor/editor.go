// Package editor owns the mutable resume document of one editing session.
package editor

import (
	"errors"
	"fmt"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// ErrEntryNotFound is returned when an operation names an entry id that the section does not hold.
var ErrEntryNotFound = errors.New("entry not found")

// Section names a repeatable section of the document.
type Section string

// Repeatable sections.
const (
	SectionEducation      Section = "education"
	SectionExperience     Section = "experience"
	SectionSkills         Section = "skills"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
)

// Sections lists the repeatable sections in document order.
func Sections() []Section {
	return []Section{SectionEducation, SectionExperience, SectionSkills, SectionProjects, SectionCertifications}
}

// ParseSection maps a name to a Section.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", name)
}

// DefaultSkillLevel is the level given to new skills.
const DefaultSkillLevel = types.SkillIntermediate

// Editor holds one resume document while it is being edited.
// It is not safe for concurrent use; Session serializes access for the HTTP layer.
type Editor struct {
	personal types.PersonalInfo
	template rendering.Template
	step     Step

	education      *arena[types.EducationEntry]
	experience     *arena[types.ExperienceEntry]
	skills         *arena[types.SkillEntry]
	projects       *arena[types.ProjectEntry]
	certifications *arena[types.CertificationEntry]
}

func empty() *Editor {
	return &Editor{
		template:       rendering.DefaultTemplate,
		step:           StepPersonal,
		education:      newArena(func(e *types.EducationEntry) *string { return &e.ID }),
		experience:     newArena(func(e *types.ExperienceEntry) *string { return &e.ID }),
		skills:         newArena(func(e *types.SkillEntry) *string { return &e.ID }),
		projects:       newArena(func(e *types.ProjectEntry) *string { return &e.ID }),
		certifications: newArena(func(e *types.CertificationEntry) *string { return &e.ID }),
	}
}

// New returns an editor scaffolded with one empty entry per repeatable section.
func New() *Editor {
	e := empty()
	e.education.add(types.EducationEntry{})
	e.experience.add(types.ExperienceEntry{Achievements: []string{}})
	e.skills.add(types.SkillEntry{Level: DefaultSkillLevel})
	e.projects.add(types.ProjectEntry{})
	e.certifications.add(types.CertificationEntry{})
	return e
}

// FromDocument adopts an existing document. Entries without an id, or whose id
// repeats an earlier entry of the same section, get a new one.
func FromDocument(doc *types.ResumeDocument, tmpl rendering.Template) *Editor {
	e := empty()
	e.template = rendering.ParseTemplate(string(tmpl))
	if doc == nil {
		return e
	}

	src := doc.Clone()
	e.personal = src.PersonalInfo
	for _, v := range src.Education {
		e.education.adopt(v)
	}
	for _, v := range src.Experience {
		e.experience.adopt(v)
	}
	for _, v := range src.Skills {
		e.skills.adopt(v)
	}
	for _, v := range src.Projects {
		e.projects.adopt(v)
	}
	for _, v := range src.Certifications {
		e.certifications.adopt(v)
	}
	return e
}

// Document returns a deep copy of the current document.
func (e *Editor) Document() *types.ResumeDocument {
	doc := types.ResumeDocument{
		PersonalInfo:   e.personal,
		Education:      e.education.list(),
		Experience:     e.experience.list(),
		Skills:         e.skills.list(),
		Projects:       e.projects.list(),
		Certifications: e.certifications.list(),
	}
	out := doc.Clone()
	return &out
}

// View renders the current document under the selected template.
func (e *Editor) View() rendering.View {
	return rendering.Render(e.Document(), e.template)
}

// PersonalInfo returns the header fields.
func (e *Editor) PersonalInfo() types.PersonalInfo {
	return e.personal
}

// SetPersonalInfo replaces the header fields.
func (e *Editor) SetPersonalInfo(info types.PersonalInfo) {
	e.personal = info
}

// Template returns the selected template.
func (e *Editor) Template() rendering.Template {
	return e.template
}

// SetTemplate selects a template. Unknown selectors fall back to the default.
func (e *Editor) SetTemplate(selector string) rendering.Template {
	e.template = rendering.ParseTemplate(selector)
	return e.template
}

// IDs returns the entry ids of a section in display order.
func (e *Editor) IDs(section Section) ([]string, error) {
	ops, err := e.section(section)
	if err != nil {
		return nil, err
	}
	return ops.ids(), nil
}

// Len returns the number of entries in a section.
func (e *Editor) Len(section Section) int {
	ops, err := e.section(section)
	if err != nil {
		return 0
	}
	return ops.len()
}

// Remove deletes an entry from any section. A section may become empty.
func (e *Editor) Remove(section Section, id string) error {
	ops, err := e.section(section)
	if err != nil {
		return err
	}
	if !ops.remove(id) {
		return notFound(section, id)
	}
	return nil
}

// Duplicate copies an entry under a new id, placed right after the original.
func (e *Editor) Duplicate(section Section, id string) (string, error) {
	ops, err := e.section(section)
	if err != nil {
		return "", err
	}
	copyID, ok := ops.duplicate(id)
	if !ok {
		return "", notFound(section, id)
	}
	return copyID, nil
}

// Move places an entry at index within its section. Out of range indexes are clamped.
func (e *Editor) Move(section Section, id string, index int) error {
	ops, err := e.section(section)
	if err != nil {
		return err
	}
	if !ops.move(id, index) {
		return notFound(section, id)
	}
	return nil
}

// sectionOps is the type-independent part of an arena.
type sectionOps interface {
	ids() []string
	len() int
	remove(id string) bool
	duplicate(id string) (string, bool)
	move(id string, index int) bool
}

type boundArena[T any] struct {
	*arena[T]
	clone func(T) T
}

func (b boundArena[T]) duplicate(id string) (string, bool) {
	return b.arena.duplicate(id, b.clone)
}

func (e *Editor) section(section Section) (sectionOps, error) {
	switch section {
	case SectionEducation:
		return boundArena[types.EducationEntry]{arena: e.education}, nil
	case SectionExperience:
		return boundArena[types.ExperienceEntry]{arena: e.experience, clone: cloneExperience}, nil
	case SectionSkills:
		return boundArena[types.SkillEntry]{arena: e.skills}, nil
	case SectionProjects:
		return boundArena[types.ProjectEntry]{arena: e.projects}, nil
	case SectionCertifications:
		return boundArena[types.CertificationEntry]{arena: e.certifications}, nil
	default:
		return nil, fmt.Errorf("unknown section %q", section)
	}
}

func cloneExperience(v types.ExperienceEntry) types.ExperienceEntry {
	v.Achievements = append([]string(nil), v.Achievements...)
	return v
}
