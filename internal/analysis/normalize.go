package analysis

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// skillAliases maps lowercase spellings to the name a resume should use.
var skillAliases = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"mongo":      "MongoDB",
	"mongodb":    "MongoDB",
}

// maxAcronymLen is the longest all-caps word kept as an acronym (SQL, AWS, HTML).
const maxAcronymLen = 4

// NormalizeSkillName maps a skill to its canonical spelling. Known aliases
// are replaced; a lowercase single word and a long all-caps word are
// capitalized; short acronyms, multi-word names and mixed case are kept.
func NormalizeSkillName(skillName string) string {
	name := strings.Join(strings.Fields(skillName), " ")
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	if canonical, ok := skillAliases[lower]; ok {
		return canonical
	}
	if strings.Contains(name, " ") {
		return name
	}

	upper := strings.ToUpper(name)
	switch {
	case name == lower && name != upper:
		return capitalize(name)
	case name == upper && name != lower && utf8.RuneCountInString(name) > maxAcronymLen:
		return capitalize(lower)
	}
	return name
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + word[size:]
}

// NormalizeKeywords canonicalizes keyword names and drops empties and duplicates.
// The first occurrence of a keyword wins.
func NormalizeKeywords(keywords []string) []string {
	normalized := make([]string, 0, len(keywords))
	seen := make(map[string]bool)

	for _, keyword := range keywords {
		canonical := NormalizeSkillName(keyword)
		if canonical == "" {
			continue
		}
		key := strings.ToLower(canonical)
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, canonical)
	}

	return normalized
}

// normalizeList trims entries and drops empty ones. The result is never nil.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// clampScore rounds a model score and clamps it to 0..100.
func clampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}
