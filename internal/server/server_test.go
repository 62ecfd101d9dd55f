package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ResumeStore.
type fakeStore struct {
	mu       sync.Mutex
	resumes  map[uuid.UUID]*fakeResume
	analyses []fakeAnalysis
	users    map[string]*db.User
	err      error
}

type fakeResume struct {
	owner string
	db.Resume
}

type fakeAnalysis struct {
	owner    string
	resumeID *uuid.UUID
	kind     string
	result   any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		resumes: make(map[uuid.UUID]*fakeResume),
		users:   make(map[string]*db.User),
	}
}

func (f *fakeStore) UpsertUser(_ context.Context, email, name, image string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		u = &db.User{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
		f.users[email] = u
	}
	if name != "" {
		u.Name = name
	}
	if image != "" {
		u.Image = image
	}
	u.UpdatedAt = time.Now()
	return u, nil
}

func (f *fakeStore) SaveResume(_ context.Context, email, name string, doc *types.ResumeDocument, template string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	id := uuid.New()
	now := time.Now()
	f.resumes[id] = &fakeResume{owner: email, Resume: db.Resume{
		ResumeSummary: db.ResumeSummary{ID: id, Name: name, Template: template, CreatedAt: now, UpdatedAt: now},
		Data:          doc,
	}}
	return id, nil
}

func (f *fakeStore) UpdateResume(_ context.Context, email string, id uuid.UUID, name string, doc *types.ResumeDocument, template string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	r, ok := f.resumes[id]
	if !ok || r.owner != email {
		return false, nil
	}
	r.Name, r.Template, r.Data, r.UpdatedAt = name, template, doc, time.Now()
	return true, nil
}

func (f *fakeStore) ListResumes(_ context.Context, email string) ([]db.ResumeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []db.ResumeSummary{}
	for _, r := range f.resumes {
		if r.owner == email {
			out = append(out, r.ResumeSummary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeStore) GetResume(_ context.Context, email string, id uuid.UUID) (*db.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.resumes[id]
	if !ok || r.owner != email {
		return nil, nil
	}
	copied := r.Resume
	return &copied, nil
}

func (f *fakeStore) DeleteResume(_ context.Context, email string, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	r, ok := f.resumes[id]
	if !ok || r.owner != email {
		return false, nil
	}
	delete(f.resumes, id)
	return true, nil
}

func (f *fakeStore) SaveAnalysis(_ context.Context, email string, resumeID *uuid.UUID, kind string, result any) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.analyses = append(f.analyses, fakeAnalysis{owner: email, resumeID: resumeID, kind: kind, result: result})
	return uuid.New(), nil
}

func (f *fakeStore) ListAnalyses(_ context.Context, email string, limit int) ([]db.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []db.Analysis{}
	for _, a := range f.analyses {
		if a.owner != email || len(out) == limit {
			continue
		}
		body, _ := json.Marshal(a.result)
		out = append(out, db.Analysis{ID: uuid.New(), ResumeID: a.resumeID, Kind: a.kind, Result: body})
	}
	return out, nil
}

// fakeAnalyzer returns canned outcomes.
type fakeAnalyzer struct {
	outcome *analysis.Outcome
	match   *analysis.MatchOutcome
	err     error

	gotResume string
	gotJob    string
}

func (f *fakeAnalyzer) Available() bool { return true }

func (f *fakeAnalyzer) Analyze(_ context.Context, resumeText, jobDescription string) (*analysis.Outcome, error) {
	f.gotResume, f.gotJob = resumeText, jobDescription
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeAnalyzer) MatchJob(_ context.Context, resumeText, jobDescription string) (*analysis.MatchOutcome, error) {
	f.gotResume, f.gotJob = resumeText, jobDescription
	if f.err != nil {
		return nil, f.err
	}
	return f.match, nil
}

// fakePDF records exports and can block until released.
type fakePDF struct {
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
}

func (f *fakePDF) Export(ctx context.Context, doc *types.ResumeDocument, tmpl rendering.Template) (*export.Artifact, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &export.Artifact{
		Filename:    export.Filename(doc.PersonalInfo, export.FormatPDF),
		ContentType: export.ContentTypePDF,
		Data:        []byte("%PDF-1.4 " + string(tmpl)),
	}, nil
}

// testServer is a Server wired to fakes.
type testServer struct {
	*Server
	store    *fakeStore
	analyzer *fakeAnalyzer
	pdf      *fakePDF
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := newFakeStore()
	analyzer := &fakeAnalyzer{}
	pdf := &fakePDF{}
	s := &Server{
		sessions:     editor.NewRegistry(time.Hour, 0),
		analyzer:     analyzer,
		pdf:          pdf,
		docx:         export.NewDOCXExporter(),
		storeEnabled: true,
		store: func(context.Context) (ResumeStore, error) {
			return store, nil
		},
	}
	t.Cleanup(s.Close)
	return &testServer{Server: s, store: store, analyzer: analyzer, pdf: pdf}
}

// do sends a request through the full handler chain, optionally as jane.
func (ts *testServer) do(t *testing.T, method, path string, body any, signedIn bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if signedIn {
		req = req.WithContext(middleware.WithIdentity(req.Context(), jane))
	}
	w := httptest.NewRecorder()
	ts.routes().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func janeDocument() *types.ResumeDocument {
	return &types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Summary: "Builds things."},
		Experience: []types.ExperienceEntry{
			{ID: "e1", Company: "Acme", Position: "Engineer", StartDate: "2020-01", IsCurrent: true},
		},
		Skills: []types.SkillEntry{{ID: "s1", Name: "Go", Level: types.SkillExpert}},
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.storeEnabled = false

	w := ts.do(t, http.MethodGet, "/health", nil, false)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "disabled", resp["database"])
	assert.Equal(t, true, resp["analysis"])
}

func TestHealthEndpoint_DatabaseUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.lazyDB = db.NewLazy("postgres://nobody@127.0.0.1:1/none?connect_timeout=1")

	w := ts.do(t, http.MethodGet, "/health", nil, false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unavailable", decodeBody[map[string]any](t, w)["database"])
}

func TestTemplatesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/templates", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, []any{"modern", "classic", "minimal"}, resp["templates"])
	assert.Equal(t, "modern", resp["default"])
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		message   string
		persisted bool
	}{
		{"validation", &ErrValidation{Field: "name", Message: "too long"}, 400, CodeValidation, "validation error: name - too long", false},
		{"internal hidden", errors.New("pq: password leaked"), 500, CodeInternal, "internal server error", false},
		{"store", &ErrStoreUnavailable{Cause: errors.New("dial tcp")}, 503, CodeUnavailable, "document store unavailable", true},
		{"capture", &export.RenderCaptureError{Message: "boom"}, 502, CodeCaptureFailed, "Failed to capture the resume preview, please try again", false},
		{"service", &analysis.ServiceError{Kind: analysis.KindRateLimited, Message: "slow down"}, 429, CodeRateLimited, "slow down", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			(&Server{}).writeError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decodeBody[map[string]any](t, w)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.message, body["error"])
			if tt.persisted {
				assert.Equal(t, false, body["persisted"])
			} else {
				assert.NotContains(t, body, "persisted")
			}
		})
	}
}

func TestWriteError_ValidationFields(t *testing.T) {
	w := httptest.NewRecorder()
	(&Server{}).writeError(w, editor.ValidateDocument(&types.ResumeDocument{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody[map[string]any](t, w)
	fields, ok := body["fields"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, fields)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"default allows all", nil, "https://app.example.com", "*"},
		{"wildcard", []string{"*"}, "https://app.example.com", "*"},
		{"listed origin echoed", []string{"https://app.example.com"}, "https://app.example.com", "https://app.example.com"},
		{"unlisted origin", []string{"https://app.example.com"}, "https://evil.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{allowedOrigins: tt.allowed}
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			s.withCORS(next).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusNoContent, w.Code)
		})
	}

	t.Run("preflight short-circuits", func(t *testing.T) {
		s := &Server{}
		w := httptest.NewRecorder()
		s.withCORS(next).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/resumes", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/analyze", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
		},
	})
	defer limiter.Stop()

	s := &Server{rateLimiter: limiter}
	handler := s.withRateLimit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, CodeRateLimited, decodeBody[map[string]any](t, second)["code"])
}

func TestRateClient(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/resumes", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, ratelimit.Client{IP: "192.0.2.1"}, rateClient(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", rateClient(req).IP)

	req = req.WithContext(middleware.WithIdentity(req.Context(), jane))
	assert.Equal(t, jane.Email, rateClient(req).Email)
}

func TestHandler_AuthChain(t *testing.T) {
	ts := newTestServer(t)
	ts.jwtService = setupTestJWTService(t, 1)
	token, err := ts.jwtService.GenerateToken(jane)
	require.NoError(t, err)

	send := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/resumes", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		ts.Handler().ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, send("").Code)
	assert.Equal(t, http.StatusUnauthorized, send("Bearer forged").Code)
	assert.Equal(t, http.StatusOK, send("Bearer "+token).Code)
}

func TestHandler_NoJWTServiceIsAnonymous(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
