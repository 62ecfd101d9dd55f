package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	var gotAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><h1>Staff Go Engineer</h1></body></html>`))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, &Options{Timeout: DefaultTimeout})

	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", result.ContentType)
	assert.Contains(t, result.HTML, "Staff Go Engineer")
	assert.Equal(t, DefaultUserAgent, gotAgent)
	assert.Contains(t, gotAccept, "text/html")
}

func TestURL_NonOKKeepsPartialResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("this posting has closed"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "unexpected status 404")
	require.NotNil(t, result)
	assert.Equal(t, "this posting has closed", result.HTML)
}

func TestURL_BodyIsCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", MaxBodyBytes+1024)))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Len(t, result.HTML, MaxBodyBytes)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr string
	}{
		{"https://boards.greenhouse.io/acme/jobs/1", ""},
		{"  http://example.com/job  ", ""},
		{"ftp://example.com/job", "scheme must be http or https"},
		{"file:///etc/passwd", "scheme must be http or https"},
		{"https://", "missing host"},
		{"not-a-valid-url", "scheme must be http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var fetchErr *Error
			require.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExtractMainText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		content  []string
		noise    []string
		want     []string
		unwanted []string
	}{
		{
			name:     "first matching selector wins",
			html:     `<body><nav>Jobs Home</nav><main><h1>Platform Engineer</h1><p>Own the deploy pipeline.</p></main><footer>© Acme</footer></body>`,
			content:  []string{"main", "article"},
			want:     []string{"Platform Engineer", "Own the deploy pipeline."},
			unwanted: []string{"Jobs Home", "© Acme"},
		},
		{
			name:    "later selector",
			html:    `<body><article><h2>About the role</h2><p>Ship Go services.</p></article></body>`,
			content: []string{"main", "article"},
			want:    []string{"About the role", "Ship Go services."},
		},
		{
			name:    "falls back to body",
			html:    `<body><div>Remote friendly.</div></body>`,
			content: []string{"main"},
			want:    []string{"Remote friendly."},
		},
		{
			name:     "job posting selectors skip sidebars",
			html:     `<body><div class="sidebar">Similar jobs</div><div class="job-description"><h2>Requirements</h2><p>5 years of Go</p></div></body>`,
			content:  JobPostingSelectors(),
			want:     []string{"Requirements", "5 years of Go"},
			unwanted: []string{"Similar jobs"},
		},
		{
			name:     "noise selectors",
			html:     `<body><div class="job-description"><p>Build APIs</p><div class="eeo-statement">Equal opportunity employer</div></div></body>`,
			content:  JobPostingSelectors(),
			noise:    PlatformNoiseSelectors(PlatformUnknown),
			want:     []string{"Build APIs"},
			unwanted: []string{"Equal opportunity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, tt.content, tt.noise...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.unwanted {
				assert.NotContains(t, text, unwanted)
			}
		})
	}
}

func TestCleanWhitespace(t *testing.T) {
	assert.Equal(t, "Build APIs in Go\nRemote", cleanWhitespace("  Build   APIs\tin Go \n\n\n   Remote  \n"))
	assert.Equal(t, "", cleanWhitespace(" \n\t\n"))
}
