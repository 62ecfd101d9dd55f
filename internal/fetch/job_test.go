package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (r *fakeRenderer) RenderPage(_ context.Context, _ string) (string, error) {
	r.calls++
	return r.html, r.err
}

func servePage(t *testing.T, html string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func longDescription() string {
	return strings.Repeat("Design and operate Go services on Kubernetes. ", 20)
}

func TestJobFetcher_StaticPage(t *testing.T) {
	url := servePage(t, `<html><body><nav>Jobs</nav><div class="job-description"><p>`+longDescription()+`</p></div><form>Apply</form></body></html>`)
	renderer := &fakeRenderer{}

	posting, err := NewJobFetcher(nil, renderer, false).Fetch(context.Background(), url)

	require.NoError(t, err)
	assert.Equal(t, PlatformUnknown, posting.Platform)
	assert.Contains(t, posting.Description, "Go services on Kubernetes")
	assert.NotContains(t, posting.Description, "Apply")
	assert.False(t, posting.Rendered)
	assert.Equal(t, 0, renderer.calls)
}

func TestJobFetcher_BrowserFallback(t *testing.T) {
	url := servePage(t, `<html><body><div id="root"></div></body></html>`)
	renderer := &fakeRenderer{html: `<html><body><main>` + longDescription() + `</main></body></html>`}

	posting, err := NewJobFetcher(nil, renderer, false).Fetch(context.Background(), url)

	require.NoError(t, err)
	assert.True(t, posting.Rendered)
	assert.Equal(t, 1, renderer.calls)
	assert.Contains(t, posting.Description, "Kubernetes")
}

func TestJobFetcher_BrowserFailureKeepsStaticText(t *testing.T) {
	url := servePage(t, `<html><body><main>Senior Go Engineer</main></body></html>`)
	renderer := &fakeRenderer{err: errors.New("chrome not found")}

	posting, err := NewJobFetcher(nil, renderer, false).Fetch(context.Background(), url)

	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", posting.Description)
	assert.False(t, posting.Rendered)
}

func TestJobFetcher_EmptyPage(t *testing.T) {
	url := servePage(t, `<html><body><script>render()</script></body></html>`)

	_, err := NewJobFetcher(nil, nil, false).Fetch(context.Background(), url)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestJobFetcher_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	_, err := NewJobFetcher(nil, nil, false).Fetch(context.Background(), server.URL)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "410")
}
