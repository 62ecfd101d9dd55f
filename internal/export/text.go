package export

import (
	"strings"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// Block headings of the text format, in emission order. Certifications are not
// part of the text format.
const (
	HeadingSummary    = "SUMMARY"
	HeadingExperience = "EXPERIENCE"
	HeadingEducation  = "EDUCATION"
	HeadingSkills     = "SKILLS"
	HeadingProjects   = "PROJECTS"
)

// textBlock is one labeled block. Entries are line groups separated by a blank line.
type textBlock struct {
	Heading string
	Entries [][]string
}

// textLayout is the structured form shared by BuildText and the DOCX writer.
type textLayout struct {
	Name    string
	Contact string
	Blocks  []textBlock
}

func buildLayout(doc *types.ResumeDocument) textLayout {
	info := doc.PersonalInfo
	layout := textLayout{
		Name:    strings.TrimSpace(info.FullName()),
		Contact: joinNonEmpty(" | ", info.Email, info.Phone, info.Location),
	}

	summary := textBlock{Heading: HeadingSummary}
	if s := strings.TrimSpace(info.Summary); s != "" {
		summary.Entries = append(summary.Entries, []string{s})
	}

	experience := textBlock{Heading: HeadingExperience}
	for _, e := range rendering.FilterExperience(doc.Experience) {
		experience.Entries = appendEntry(experience.Entries,
			joinNonEmpty(" at ", e.Position, e.Company),
			rendering.FormatRange(e.StartDate, e.EndDate, e.IsCurrent),
			e.Description,
		)
	}

	education := textBlock{Heading: HeadingEducation}
	for _, e := range doc.Education {
		education.Entries = appendEntry(education.Entries,
			joinNonEmpty(" in ", e.Degree, e.Field),
			e.Institution,
			rendering.FormatRange(e.StartDate, e.EndDate, false),
		)
	}

	skills := textBlock{Heading: HeadingSkills}
	names := make([]string, 0, len(doc.Skills))
	for _, s := range doc.Skills {
		names = append(names, s.Name)
	}
	skills.Entries = appendEntry(skills.Entries, joinNonEmpty(", ", names...))

	projects := textBlock{Heading: HeadingProjects}
	for _, p := range doc.Projects {
		projects.Entries = appendEntry(projects.Entries, p.Name, p.Technologies, p.Description)
	}

	layout.Blocks = []textBlock{summary, experience, education, skills, projects}
	return layout
}

// appendEntry adds the non-empty lines as one entry. An entry with no lines is skipped.
func appendEntry(entries [][]string, lines ...string) [][]string {
	var kept []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return entries
	}
	return append(entries, kept)
}

func joinNonEmpty(sep string, values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

// lines flattens the layout: name, contact, then each heading followed by its
// entries, with a blank line between blocks and between entries.
func (l textLayout) lines() []string {
	var out []string
	for _, head := range []string{l.Name, l.Contact} {
		if head != "" {
			out = append(out, head)
		}
	}
	for _, b := range l.Blocks {
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, b.Heading)
		for i, entry := range b.Entries {
			if i > 0 {
				out = append(out, "")
			}
			out = append(out, entry...)
		}
	}
	return out
}

// BuildText serializes doc into the labeled plain-text layout. Every block
// heading is emitted even when the block is empty. The output is deterministic.
func BuildText(doc *types.ResumeDocument) string {
	if doc == nil {
		doc = &types.ResumeDocument{}
	}
	return strings.Join(buildLayout(doc).lines(), "\n")
}
