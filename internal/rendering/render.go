// Package rendering lays out resume documents under the fixed visual templates
// and serializes the result to HTML for preview and capture.
package rendering

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-builder/internal/types"
)

// EllipsisMarker is appended to descriptions shortened by a fitting policy.
const EllipsisMarker = "..."

// Render lays out doc under the given template. It has no side effects and
// never fails: missing fields degrade to omitted text. The document is not modified.
func Render(doc *types.ResumeDocument, tmpl Template) View {
	p := tmpl.profile()
	view := View{
		Template: p.template,
		Style:    p.style,
	}
	if doc == nil {
		return view
	}

	view.Header = buildHeader(doc.PersonalInfo)

	if summary := strings.TrimSpace(doc.PersonalInfo.Summary); summary != "" {
		view.Sections = append(view.Sections, Section{
			Kind:  SectionSummary,
			Title: p.titles.Summary,
			Text:  summary,
		})
	}

	// Content filter runs for every template before the fitting policy.
	experience := fitExperience(FilterExperience(doc.Experience), p.fit)
	if len(experience) > 0 {
		view.Sections = append(view.Sections, Section{
			Kind:  SectionExperience,
			Title: p.titles.Experience,
			Items: experienceItems(experience, p.fit),
		})
	}

	if len(doc.Education) > 0 {
		view.Sections = append(view.Sections, Section{
			Kind:  SectionEducation,
			Title: p.titles.Education,
			Items: educationItems(doc.Education),
		})
	}

	if len(doc.Skills) > 0 {
		view.Sections = append(view.Sections, Section{
			Kind:   SectionSkills,
			Title:  p.titles.Skills,
			Skills: skillBadges(doc.Skills, p.template),
		})
	}

	if len(doc.Projects) > 0 {
		view.Sections = append(view.Sections, Section{
			Kind:  SectionProjects,
			Title: p.titles.Projects,
			Items: projectItems(doc.Projects, p.titles.ProjectLink),
		})
	}

	if len(doc.Certifications) > 0 {
		view.Sections = append(view.Sections, Section{
			Kind:  SectionCertifications,
			Title: p.titles.Certifications,
			Items: certificationItems(doc.Certifications, p.titles.CertLink),
		})
	}

	return view
}

// HasExperienceContent reports whether an experience entry has a non-blank
// position, company or description.
func HasExperienceContent(e types.ExperienceEntry) bool {
	return strings.TrimSpace(e.Position) != "" ||
		strings.TrimSpace(e.Company) != "" ||
		strings.TrimSpace(e.Description) != ""
}

// FilterExperience drops blank placeholder rows, keeping order.
func FilterExperience(entries []types.ExperienceEntry) []types.ExperienceEntry {
	out := make([]types.ExperienceEntry, 0, len(entries))
	for _, e := range entries {
		if HasExperienceContent(e) {
			out = append(out, e)
		}
	}
	return out
}

// Truncate shortens text to at most limit runes and appends EllipsisMarker when
// anything was cut. A non-positive limit disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + EllipsisMarker
}

func fitExperience(entries []types.ExperienceEntry, fit fitting) []types.ExperienceEntry {
	if fit.MaxExperience > 0 && len(entries) > fit.MaxExperience {
		return entries[:fit.MaxExperience]
	}
	return entries
}

func buildHeader(info types.PersonalInfo) Header {
	return Header{
		Name:     strings.TrimSpace(info.FullName()),
		Contacts: nonEmpty(info.Email, info.Phone, info.Location),
		Linkedin: strings.TrimSpace(info.LinkedinURL),
	}
}

func experienceItems(entries []types.ExperienceEntry, fit fitting) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{
			ID:          e.ID,
			Title:       strings.TrimSpace(e.Position),
			Subtitle:    strings.TrimSpace(e.Company),
			Location:    strings.TrimSpace(e.Location),
			Duration:    FormatRange(e.StartDate, e.EndDate, e.IsCurrent),
			Description: Truncate(strings.TrimSpace(e.Description), fit.DescriptionLimit),
			Details:     nonEmpty(e.Achievements...),
		})
	}
	return items
}

func educationItems(entries []types.EducationEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{
			ID:          e.ID,
			Title:       joinNonEmpty(" in ", e.Degree, e.Field),
			Subtitle:    strings.TrimSpace(e.Institution),
			Duration:    FormatRange(e.StartDate, e.EndDate, false),
			Description: strings.TrimSpace(e.Description),
		}
		if gpa := strings.TrimSpace(e.GPA); gpa != "" {
			item.Details = []string{"GPA: " + gpa}
		}
		items = append(items, item)
	}
	return items
}

func skillBadges(entries []types.SkillEntry, tmpl Template) []SkillBadge {
	badges := make([]SkillBadge, 0, len(entries))
	for _, s := range entries {
		badge := SkillBadge{
			ID:    s.ID,
			Name:  strings.TrimSpace(s.Name),
			Level: s.Level,
			Class: "skill--unknown",
		}
		if s.Level.Valid() {
			badge.Class = "skill--" + string(s.Level)
		}
		if tmpl == Classic && s.Level.Valid() {
			badge.Label = capitalize(string(s.Level))
		}
		badges = append(badges, badge)
	}
	return badges
}

func projectItems(entries []types.ProjectEntry, linkLabel string) []Item {
	items := make([]Item, 0, len(entries))
	for _, p := range entries {
		item := Item{
			ID:          p.ID,
			Title:       strings.TrimSpace(p.Name),
			Subtitle:    strings.TrimSpace(p.Technologies),
			Duration:    FormatRange(p.StartDate, p.EndDate, false),
			Description: strings.TrimSpace(p.Description),
		}
		if link := strings.TrimSpace(p.Link); link != "" && linkLabel != "" {
			item.Link = link
			item.LinkLabel = linkLabel
		}
		items = append(items, item)
	}
	return items
}

func certificationItems(entries []types.CertificationEntry, linkLabel string) []Item {
	items := make([]Item, 0, len(entries))
	for _, c := range entries {
		item := Item{
			ID:       c.ID,
			Title:    strings.TrimSpace(c.Name),
			Subtitle: strings.TrimSpace(c.Issuer),
			Duration: FormatDate(c.Date),
		}
		if link := strings.TrimSpace(c.Link); link != "" && linkLabel != "" {
			item.Link = link
			item.LinkLabel = linkLabel
		}
		items = append(items, item)
	}
	return items
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonEmpty(sep string, values ...string) string {
	return strings.Join(nonEmpty(values...), sep)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
