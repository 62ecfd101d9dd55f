package fetch

import (
	"context"
	"errors"
	"log"
)

// ErrNoContent is returned when a page yields no job description text.
var ErrNoContent = errors.New("no job description found on page")

// JobPosting is a job description pulled from a web page.
type JobPosting struct {
	URL         string
	Platform    Platform
	Description string
	Rendered    bool // true when the text came from the headless browser
}

// JobFetcher turns job posting URLs into plain-text descriptions.
type JobFetcher struct {
	opts     *Options
	renderer PageRenderer
	verbose  bool
}

// NewJobFetcher creates a fetcher. A nil renderer disables the browser fallback.
func NewJobFetcher(opts *Options, renderer PageRenderer, verbose bool) *JobFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JobFetcher{opts: opts, renderer: renderer, verbose: verbose}
}

// Fetch downloads the posting and extracts its description with the
// selectors of the detected job board. When the static page yields too
// little text and a renderer is configured, the page is rendered in the
// browser and extracted again.
func (f *JobFetcher) Fetch(ctx context.Context, rawURL string) (*JobPosting, error) {
	platform := DetectPlatform(rawURL)
	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	posting := &JobPosting{URL: rawURL, Platform: platform}

	result, err := URL(ctx, rawURL, f.opts)
	if err != nil {
		return nil, err
	}
	posting.Description, err = ExtractMainText(result.HTML, content, noise...)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to extract text", Cause: err}
	}
	if f.verbose {
		log.Printf("[fetch] %s (%s): %d chars from HTTP", rawURL, platform, len(posting.Description))
	}

	if ShouldUseBrowser(posting.Description) && f.renderer != nil {
		html, err := f.renderer.RenderPage(ctx, rawURL)
		if err != nil {
			log.Printf("[fetch] browser fallback failed for %s: %v", rawURL, err)
		} else if text, err := ExtractMainText(html, content, noise...); err == nil && len(text) > len(posting.Description) {
			posting.Description = text
			posting.Rendered = true
		}
	}

	if posting.Description == "" {
		return nil, &Error{URL: rawURL, Message: "empty page", Cause: ErrNoContent}
	}
	return posting, nil
}
