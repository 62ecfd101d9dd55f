package rendering

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/jonathan/resume-builder/internal/types"
)

// SurfaceID is the id of the root element that holds the printable resume.
const SurfaceID = "resume"

//go:embed layouts/*.html
var layoutFS embed.FS

var (
	layoutsOnce sync.Once
	layouts     map[Template]*template.Template
	layoutsErr  error
)

var funcs = template.FuncMap{
	// css marks a style value from a fixed profile as safe inside a <style> block.
	"css": func(s string) template.CSS { return template.CSS(s) },
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("dict expects key/value pairs, got %d arguments", len(pairs))
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
}

// loadLayouts parses the shared base layout together with each template's own layout.
func loadLayouts() (map[Template]*template.Template, error) {
	layoutsOnce.Do(func() {
		parsed := make(map[Template]*template.Template, len(Templates()))
		for _, t := range Templates() {
			tmpl, err := template.New(string(t)).Funcs(funcs).ParseFS(layoutFS, "layouts/base.html", "layouts/"+string(t)+".html")
			if err != nil {
				layoutsErr = &LayoutError{Stage: StageParse, Template: t, Cause: err}
				return
			}
			parsed[t] = tmpl
		}
		layouts = parsed
	})
	return layouts, layoutsErr
}

// RenderHTML renders doc under tmpl and serializes the view to a standalone HTML page.
func RenderHTML(doc *types.ResumeDocument, tmpl Template) (string, error) {
	return RenderViewHTML(Render(doc, tmpl))
}

// RenderViewHTML serializes an already computed view. All text is escaped by html/template.
func RenderViewHTML(view View) (string, error) {
	set, err := loadLayouts()
	if err != nil {
		return "", err
	}

	tmpl, ok := set[view.Template]
	if !ok {
		tmpl = set[DefaultTemplate]
	}

	var result strings.Builder
	if err := tmpl.ExecuteTemplate(&result, "page", view); err != nil {
		return "", &LayoutError{Stage: StageExecute, Template: view.Template, Cause: err}
	}
	return result.String(), nil
}
