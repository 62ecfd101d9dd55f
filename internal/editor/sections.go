package editor

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/types"
)

func notFound(section Section, id string) error {
	return fmt.Errorf("%s %s: %w", section, id, ErrEntryNotFound)
}

// Education returns the education entries in order.
func (e *Editor) Education() []types.EducationEntry { return e.education.list() }

// AddEducation appends an entry and returns its id. Any id on entry is ignored.
func (e *Editor) AddEducation(entry types.EducationEntry) string {
	return e.education.add(entry)
}

// UpdateEducation replaces the entry with the given id.
func (e *Editor) UpdateEducation(id string, entry types.EducationEntry) error {
	if !e.education.update(id, entry) {
		return notFound(SectionEducation, id)
	}
	return nil
}

// RemoveEducation deletes the entry with the given id.
func (e *Editor) RemoveEducation(id string) error { return e.Remove(SectionEducation, id) }

// Experience returns the experience entries in order.
func (e *Editor) Experience() []types.ExperienceEntry {
	out := e.experience.list()
	for i := range out {
		out[i] = cloneExperience(out[i])
	}
	return out
}

// AddExperience appends an entry and returns its id. Any id on entry is ignored.
func (e *Editor) AddExperience(entry types.ExperienceEntry) string {
	return e.experience.add(cloneExperience(entry))
}

// UpdateExperience replaces the entry with the given id.
func (e *Editor) UpdateExperience(id string, entry types.ExperienceEntry) error {
	if !e.experience.update(id, cloneExperience(entry)) {
		return notFound(SectionExperience, id)
	}
	return nil
}

// RemoveExperience deletes the entry with the given id.
func (e *Editor) RemoveExperience(id string) error { return e.Remove(SectionExperience, id) }

// Skills returns the skill entries in order.
func (e *Editor) Skills() []types.SkillEntry { return e.skills.list() }

// AddSkill appends a skill and returns its id. An empty level becomes DefaultSkillLevel.
func (e *Editor) AddSkill(entry types.SkillEntry) string {
	if entry.Level == "" {
		entry.Level = DefaultSkillLevel
	}
	return e.skills.add(entry)
}

// UpdateSkill replaces the skill with the given id.
func (e *Editor) UpdateSkill(id string, entry types.SkillEntry) error {
	if !e.skills.update(id, entry) {
		return notFound(SectionSkills, id)
	}
	return nil
}

// RemoveSkill deletes the skill with the given id.
func (e *Editor) RemoveSkill(id string) error { return e.Remove(SectionSkills, id) }

// Projects returns the project entries in order.
func (e *Editor) Projects() []types.ProjectEntry { return e.projects.list() }

// AddProject appends a project and returns its id.
func (e *Editor) AddProject(entry types.ProjectEntry) string {
	return e.projects.add(entry)
}

// UpdateProject replaces the project with the given id.
func (e *Editor) UpdateProject(id string, entry types.ProjectEntry) error {
	if !e.projects.update(id, entry) {
		return notFound(SectionProjects, id)
	}
	return nil
}

// RemoveProject deletes the project with the given id.
func (e *Editor) RemoveProject(id string) error { return e.Remove(SectionProjects, id) }

// Certifications returns the certification entries in order.
func (e *Editor) Certifications() []types.CertificationEntry { return e.certifications.list() }

// AddCertification appends a certification and returns its id.
func (e *Editor) AddCertification(entry types.CertificationEntry) string {
	return e.certifications.add(entry)
}

// UpdateCertification replaces the certification with the given id.
func (e *Editor) UpdateCertification(id string, entry types.CertificationEntry) error {
	if !e.certifications.update(id, entry) {
		return notFound(SectionCertifications, id)
	}
	return nil
}

// RemoveCertification deletes the certification with the given id.
func (e *Editor) RemoveCertification(id string) error { return e.Remove(SectionCertifications, id) }
