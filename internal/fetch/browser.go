package fetch

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/jonathan/resume-builder/internal/config"
)

// MinContentLength is the shortest extracted description trusted from a
// plain HTTP fetch. Shorter text usually means a page rendered by JavaScript.
const MinContentLength = 500

// ShouldUseBrowser reports whether extracted text is too short to be a real posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// PageRenderer returns the HTML of a page after its scripts have run.
type PageRenderer interface {
	RenderPage(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages in a headless Chrome.
type ChromeRenderer struct {
	cfg     *config.ChromeConfig
	settle  time.Duration
	verbose bool
}

// NewChromeRenderer creates a renderer using the browser settings in cfg.
func NewChromeRenderer(cfg *config.ChromeConfig, verbose bool) *ChromeRenderer {
	return &ChromeRenderer{cfg: cfg, settle: 3 * time.Second, verbose: verbose}
}

// RenderPage navigates to url, waits for the body plus a settle delay for
// client-side rendering and returns the document's outer HTML.
func (r *ChromeRenderer) RenderPage(ctx context.Context, url string) (string, error) {
	if r.verbose {
		log.Printf("[fetch] rendering %s in headless browser", url)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", r.cfg.NoSandbox),
	)
	if r.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, r.cfg.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	if r.verbose {
		log.Printf("[fetch] rendered HTML: %d bytes", len(html))
	}
	return html, nil
}
