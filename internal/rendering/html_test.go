package rendering

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func headings(doc *goquery.Document) []string {
	var out []string
	doc.Find("#resume h2").Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

func TestRenderHTML_AllTemplates(t *testing.T) {
	for _, tmpl := range Templates() {
		t.Run(string(tmpl), func(t *testing.T) {
			html, err := RenderHTML(sampleDocument(), tmpl)
			require.NoError(t, err)

			doc := parseHTML(t, html)
			surface := doc.Find("#" + SurfaceID)
			require.Equal(t, 1, surface.Length())
			assert.True(t, surface.HasClass("resume--"+string(tmpl)))
			assert.Equal(t, "Jane Doe", strings.TrimSpace(surface.Find("h1").Text()))
			assert.Contains(t, surface.Text(), "Mar 2021 - Present")
			assert.Equal(t, 2, surface.Find(".section--experience .entry").Length())
		})
	}
}

func TestRenderHTML_NoSkillsHeadingWhenEmpty(t *testing.T) {
	doc := sampleDocument()
	doc.Skills = nil

	for _, tmpl := range Templates() {
		html, err := RenderHTML(doc, tmpl)
		require.NoError(t, err)
		for _, h := range headings(parseHTML(t, html)) {
			assert.NotContains(t, h, "Skills", tmpl)
		}
	}
}

func TestRenderHTML_Headings(t *testing.T) {
	html, err := RenderHTML(sampleDocument(), Classic)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Professional Summary",
		"Professional Experience",
		"Education",
		"Technical Skills",
		"Projects",
		"Certifications",
	}, headings(parseHTML(t, html)))

	html, err = RenderHTML(sampleDocument(), Modern)
	require.NoError(t, err)
	page := parseHTML(t, html)
	// Modern keeps the summary under the name instead of in its own section.
	assert.NotContains(t, headings(page), "Professional Summary")
	assert.Equal(t, 1, page.Find("header .summary").Length())
	assert.Equal(t, 2, page.Find(".skill--badge").Length())
	assert.Equal(t, 1, page.Find(".skill--expert").Length())
}

func TestRenderHTML_EscapesText(t *testing.T) {
	doc := sampleDocument()
	doc.PersonalInfo.FirstName = "<script>alert(1)</script>"

	html, err := RenderHTML(doc, Minimal)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Equal(t, 0, parseHTML(t, html).Find("#resume script").Length())
}

func TestRenderHTML_Deterministic(t *testing.T) {
	first, err := RenderHTML(sampleDocument(), Classic)
	require.NoError(t, err)
	second, err := RenderHTML(sampleDocument(), Classic)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderHTML_EmptyDocument(t *testing.T) {
	html, err := RenderHTML(&types.ResumeDocument{}, Modern)
	require.NoError(t, err)
	page := parseHTML(t, html)
	assert.Equal(t, 1, page.Find("#resume").Length())
	assert.Equal(t, 0, page.Find("#resume section").Length())
}

func TestRenderViewHTML_UnknownTemplateUsesDefaultLayout(t *testing.T) {
	view := Render(sampleDocument(), Classic)
	view.Template = Template("retro")

	html, err := RenderViewHTML(view)
	require.NoError(t, err)
	assert.True(t, parseHTML(t, html).Find("#resume").HasClass("resume--modern"))
}
