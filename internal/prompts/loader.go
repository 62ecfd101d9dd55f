// Package prompts holds the language-model prompt templates. Each embedded
// JSON file maps a prompt key to its template text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// library is every embedded file, parsed on first use.
var library = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}
	files := make(map[string]map[string]string, len(names))
	for _, name := range names {
		raw, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var entries map[string]string
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		files[name] = entries
	}
	return files, nil
})

func file(filename string) (map[string]string, error) {
	files, err := library()
	if err != nil {
		return nil, err
	}
	entries, ok := files[filename]
	if !ok {
		return nil, fmt.Errorf("unknown prompt file %q", filename)
	}
	return entries, nil
}

// Get returns the template stored under key in filename (for example "analysis.json").
func Get(filename, key string) (string, error) {
	entries, err := file(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts that ship with the binary; a miss is a build defect.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic("prompts: " + err.Error())
	}
	return prompt
}

// List returns the keys of filename in sorted order.
func List(filename string) ([]string, error) {
	entries, err := file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Placeholders returns the distinct {{.Name}} fields a template refers to, sorted.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Format substitutes {{.Name}} placeholders with values from data in one
// pass; text inside a substituted value is never expanded again. Unknown
// placeholders stay as written.
func Format(template string, data map[string]string) string {
	var b strings.Builder
	last := 0
	for _, loc := range placeholder.FindAllStringSubmatchIndex(template, -1) {
		value, ok := data[template[loc[2]:loc[3]]]
		if !ok {
			continue
		}
		b.WriteString(template[last:loc[0]])
		b.WriteString(value)
		last = loc[1]
	}
	b.WriteString(template[last:])
	return b.String()
}
