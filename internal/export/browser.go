package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/resume-builder/internal/config"
)

// Browser captures rendered HTML. ChromeBrowser is the production implementation.
type Browser interface {
	// CaptureElement loads html and returns a PNG of the first element matching
	// selector, rendered at the given device scale factor.
	CaptureElement(ctx context.Context, html, selector string, scale float64) ([]byte, error)
	// PrintPDF loads html and prints it to an A4 PDF without margins.
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// A4 in inches for Page.printToPDF.
const (
	paperWidthIn  = 8.27
	paperHeightIn = 11.69
)

// ChromeBrowser drives a headless Chrome through chromedp. Every call starts
// its own browser so calls never share state.
type ChromeBrowser struct {
	cfg     config.ChromeConfig
	verbose bool
}

// NewChromeBrowser creates a browser runner. A nil config uses chromedp's
// binary lookup and a 60s timeout.
func NewChromeBrowser(cfg *config.ChromeConfig, verbose bool) *ChromeBrowser {
	b := &ChromeBrowser{
		cfg:     config.ChromeConfig{Timeout: 60 * time.Second, NoSandbox: true},
		verbose: verbose,
	}
	if cfg != nil {
		b.cfg = *cfg
	}
	return b
}

// run starts a browser, loads html from a temp file and runs actions against it.
func (b *ChromeBrowser) run(ctx context.Context, html string, actions ...chromedp.Action) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", b.cfg.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.cfg.Timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "resume-export-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}

	if b.verbose {
		log.Printf("[export] Loading %d bytes of HTML in headless browser", len(html))
	}

	all := append([]chromedp.Action{
		chromedp.Navigate("file://" + htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}, actions...)
	if err := chromedp.Run(browserCtx, all...); err != nil {
		return fmt.Errorf("browser run failed: %w", err)
	}
	return nil
}

// CaptureElement implements Browser.
func (b *ChromeBrowser) CaptureElement(ctx context.Context, html, selector string, scale float64) ([]byte, error) {
	var buf []byte
	err := b.run(ctx, html,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.ScreenshotScale(selector, scale, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// PrintPDF implements Browser.
func (b *ChromeBrowser) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	var pdf []byte
	err := b.run(ctx, html,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				WithPageRanges("1").
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
