package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

// Known job boards.
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

// board describes where a platform keeps its job description and what to strip around it.
type board struct {
	platform Platform
	hosts    []string // host suffixes
	content  []string
	noise    []string
}

var boards = []board{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
}

// commonNoise is stripped from every job page: application forms, EEO text,
// share widgets and consent banners.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board platform from a URL's host.
func DetectPlatform(rawURL string) Platform {
	if b, ok := boardFor(rawURL); ok {
		return b.platform
	}
	return PlatformUnknown
}

func boardFor(rawURL string) (board, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return board{}, false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, b := range boards {
		for _, suffix := range b.hosts {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return b, true
			}
		}
	}
	return board{}, false
}

// PlatformContentSelectors returns content selectors for a platform,
// the generic job posting selectors for unknown ones.
func PlatformContentSelectors(platform Platform) []string {
	for _, b := range boards {
		if b.platform == platform {
			return b.content
		}
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns the selectors removed before extraction on a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string(nil), commonNoise...)
	for _, b := range boards {
		if b.platform == platform {
			return append(noise, b.noise...)
		}
	}
	return noise
}
