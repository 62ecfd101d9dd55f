package rendering

import "strings"

// Template identifies one of the fixed visual styles.
type Template string

// Supported templates.
const (
	Modern  Template = "modern"
	Classic Template = "classic"
	Minimal Template = "minimal"
)

// DefaultTemplate is used whenever a selector is empty or unknown.
const DefaultTemplate = Modern

// Templates lists the supported templates in display order.
func Templates() []Template {
	return []Template{Modern, Classic, Minimal}
}

// ParseTemplate maps a selector to a Template. Unknown selectors fall back to Modern.
func ParseTemplate(selector string) Template {
	switch t := Template(strings.ToLower(strings.TrimSpace(selector))); t {
	case Modern, Classic, Minimal:
		return t
	default:
		return DefaultTemplate
	}
}

// Style holds the presentational rules of a template.
type Style struct {
	HeaderAlign   string `json:"headerAlign"` // left or center
	Accent        string `json:"accent"`      // CSS color for rules and company names
	HeadingWeight string `json:"headingWeight"`
	NameSize      string `json:"nameSize"`
	SectionGap    string `json:"sectionGap"`
	Padding       string `json:"padding"`
	StackContacts bool   `json:"stackContacts"` // one contact per line instead of an inline row
	RuleUnderName bool   `json:"ruleUnderName"`
	RuleUnderHead bool   `json:"ruleUnderHead"`
	CenterEntries bool   `json:"centerEntries"`
	SummaryInline bool   `json:"summaryInline"` // summary sits under the name without a heading
}

// fitting is the page-fit policy applied after content filtering.
// Zero values mean unlimited.
type fitting struct {
	MaxExperience    int
	DescriptionLimit int
}

// titles are the section headings of a template. An empty title renders no heading.
type titles struct {
	Summary        string
	Experience     string
	Education      string
	Skills         string
	Projects       string
	Certifications string
	ProjectLink    string
	CertLink       string
}

// profile bundles everything a template selects.
type profile struct {
	template Template
	style    Style
	fit      fitting
	titles   titles
}

// profile resolves the rules of a template. The switch is exhaustive over the
// closed set; the default arm is the fallback for values built outside ParseTemplate.
func (t Template) profile() profile {
	switch t {
	case Classic:
		return profile{
			template: Classic,
			style: Style{
				HeaderAlign:   "center",
				Accent:        "#2563eb",
				HeadingWeight: "700",
				NameSize:      "36px",
				SectionGap:    "24px",
				Padding:       "32px",
				RuleUnderName: true,
			},
			titles: titles{
				Summary:        "Professional Summary",
				Experience:     "Professional Experience",
				Education:      "Education",
				Skills:         "Technical Skills",
				Projects:       "Projects",
				Certifications: "Certifications",
				ProjectLink:    "View Project",
			},
		}
	case Minimal:
		return profile{
			template: Minimal,
			style: Style{
				HeaderAlign:   "center",
				Accent:        "#4b5563",
				HeadingWeight: "500",
				NameSize:      "30px",
				SectionGap:    "32px",
				Padding:       "24px",
				StackContacts: true,
				CenterEntries: true,
				SummaryInline: true,
			},
			titles: titles{
				Experience:     "Experience",
				Education:      "Education",
				Skills:         "Skills",
				Projects:       "Projects",
				Certifications: "Certifications",
			},
		}
	case Modern:
		fallthrough
	default:
		return profile{
			template: Modern,
			style: Style{
				HeaderAlign:   "left",
				Accent:        "#2563eb",
				HeadingWeight: "700",
				NameSize:      "24px",
				SectionGap:    "16px",
				Padding:       "24px",
				RuleUnderName: true,
				RuleUnderHead: true,
				SummaryInline: true,
			},
			fit: fitting{MaxExperience: 3, DescriptionLimit: 150},
			titles: titles{
				Experience:     "Professional Experience",
				Education:      "Education",
				Skills:         "Skills",
				Projects:       "Projects",
				Certifications: "Certifications",
				ProjectLink:    "View Project →",
				CertLink:       "Verify Certificate →",
			},
		}
	}
}
