package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	_ "image/png" // register PNG for image.DecodeConfig
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// CaptureScale is the device scale factor of the surface capture.
const CaptureScale = 2.0

// PDFExporter captures the rendered resume as an image and prints it on a single A4 page.
type PDFExporter struct {
	browser Browser
	verbose bool
}

// NewPDFExporter creates an exporter backed by the given browser.
func NewPDFExporter(browser Browser, verbose bool) *PDFExporter {
	return &PDFExporter{browser: browser, verbose: verbose}
}

// Export renders doc under tmpl, captures the #resume surface and embeds the
// capture in a one-page PDF. Content taller than the printable area is clipped.
// Every failure is a *RenderCaptureError.
func (e *PDFExporter) Export(ctx context.Context, doc *types.ResumeDocument, tmpl rendering.Template) (*Artifact, error) {
	if doc == nil {
		return nil, &RenderCaptureError{Message: "no document to export"}
	}

	html, err := rendering.RenderHTML(doc, tmpl)
	if err != nil {
		return nil, &RenderCaptureError{Message: "failed to render view", Cause: err}
	}
	if err := preflight(html); err != nil {
		return nil, err
	}

	png, err := e.browser.CaptureElement(ctx, html, "#"+rendering.SurfaceID, CaptureScale)
	if err != nil {
		return nil, &RenderCaptureError{Message: "failed to capture rendering surface", Cause: err}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return nil, &RenderCaptureError{Message: "capture is not a valid PNG", Cause: err}
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, &RenderCaptureError{Message: "rendering surface has no size"}
	}

	placement := PlaceImage(cfg.Width, cfg.Height)
	if e.verbose {
		log.Printf("[export] Captured %dx%d px, placed at %.1fx%.1f mm (clipped: %v)",
			cfg.Width, cfg.Height, placement.Width, placement.Height, placement.Clipped)
	}

	pageHTML, err := composePage(png, placement)
	if err != nil {
		return nil, &RenderCaptureError{Message: "failed to compose page", Cause: err}
	}

	pdf, err := e.browser.PrintPDF(ctx, pageHTML)
	if err != nil {
		return nil, &RenderCaptureError{Message: "failed to print page", Cause: err}
	}

	return &Artifact{
		Filename:    Filename(doc.PersonalInfo, FormatPDF),
		ContentType: ContentTypePDF,
		Data:        pdf,
	}, nil
}

// preflight checks that the rendered page carries exactly one capture surface.
func preflight(html string) error {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &RenderCaptureError{Message: "rendered page is not parseable", Cause: err}
	}
	if n := page.Find("#" + rendering.SurfaceID).Length(); n != 1 {
		return &RenderCaptureError{Message: fmt.Sprintf("expected one #%s surface, found %d", rendering.SurfaceID, n)}
	}
	return nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: A4; margin: 0; }
  html, body { margin: 0; padding: 0; background: #ffffff; }
  .sheet { position: relative; width: {{.PageW}}mm; height: {{.PageH}}mm; overflow: hidden; }
  .frame { position: absolute; left: {{.X}}mm; top: {{.Y}}mm; width: {{.W}}mm; height: {{.H}}mm; overflow: hidden; }
  .frame img { display: block; width: {{.W}}mm; height: {{.ScaledH}}mm; }
</style>
</head>
<body>
<div class="sheet"><div class="frame"><img src="{{.Src}}" alt="Resume"></div></div>
</body>
</html>`))

type pageData struct {
	PageW, PageH, X, Y, W, H, ScaledH template.CSS
	Src                               template.URL
}

func mm(v float64) template.CSS {
	return template.CSS(fmt.Sprintf("%.3f", v))
}

// composePage lays the capture out on an A4 sheet for printing.
func composePage(png []byte, p Placement) (string, error) {
	data := pageData{
		PageW:   mm(PageWidthMM),
		PageH:   mm(PageHeightMM),
		X:       mm(p.X),
		Y:       mm(p.Y),
		W:       mm(p.Width),
		H:       mm(p.Height),
		ScaledH: mm(p.ScaledHeight),
		Src:     template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
	}

	var sb strings.Builder
	if err := pageTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
