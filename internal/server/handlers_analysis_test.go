package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedOutcome() *analysis.Outcome {
	return &analysis.Outcome{Parsed: &types.AnalysisResult{
		ATSScore:        78,
		OverallScore:    82,
		Strengths:       []string{"Clear impact"},
		Improvements:    []string{"Add metrics"},
		Recommendations: []string{"Mention Kubernetes"},
	}}
}

func TestHandleAnalyze_Anonymous(t *testing.T) {
	ts := newTestServer(t)
	ts.analyzer.outcome = parsedOutcome()

	w := ts.do(t, http.MethodPost, "/analyze", types.AnalyzeRequest{ResumeText: "Jane Doe, engineer", JobDescription: "Go developer"}, false)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, true, resp["parsed"])
	assert.Equal(t, false, resp["persisted"])
	result := resp["analysis"].(map[string]any)
	assert.Equal(t, float64(78), result["atsScore"])
	assert.NotContains(t, resp, "rawResponse")
	assert.Equal(t, "Jane Doe, engineer", ts.analyzer.gotResume)
	assert.Equal(t, "Go developer", ts.analyzer.gotJob)
	assert.Empty(t, ts.store.analyses)
}

func TestHandleAnalyze_SignedInRecordsHistory(t *testing.T) {
	ts := newTestServer(t)
	ts.analyzer.outcome = parsedOutcome()
	resumeID := uuid.New()

	w := ts.do(t, http.MethodPost, "/analyze", types.AnalyzeRequest{ResumeText: "text", ResumeID: resumeID.String()}, true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody[map[string]any](t, w)["persisted"])
	require.Len(t, ts.store.analyses, 1)
	saved := ts.store.analyses[0]
	assert.Equal(t, jane.Email, saved.owner)
	assert.Equal(t, db.AnalysisKindResume, saved.kind)
	require.NotNil(t, saved.resumeID)
	assert.Equal(t, resumeID, *saved.resumeID)
}

func TestHandleAnalyze_StoreDownStillAnswers(t *testing.T) {
	ts := newTestServer(t)
	ts.analyzer.outcome = parsedOutcome()
	ts.store.err = errors.New("connection refused")

	w := ts.do(t, http.MethodPost, "/analyze", types.AnalyzeRequest{ResumeText: "text"}, true)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, true, resp["parsed"])
	assert.Equal(t, false, resp["persisted"])
}

func TestHandleAnalyze_UnparsedIsNotRecorded(t *testing.T) {
	ts := newTestServer(t)
	ts.analyzer.outcome = &analysis.Outcome{Raw: "I think this resume is great!"}

	w := ts.do(t, http.MethodPost, "/analyze", types.AnalyzeRequest{ResumeText: "text"}, true)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, false, resp["parsed"])
	assert.Equal(t, "I think this resume is great!", resp["rawResponse"])
	assert.NotContains(t, resp, "analysis")
	assert.Empty(t, ts.store.analyses)
}

func TestHandleAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		err    error
		status int
		code   string
	}{
		{"missing resume text", types.AnalyzeRequest{JobDescription: "jd"}, nil, 400, CodeValidation},
		{"bad resume id", types.AnalyzeRequest{ResumeText: "x", ResumeID: "nope"}, nil, 400, CodeValidation},
		{"invalid JSON", `{"resumeText":`, nil, 400, CodeValidation},
		{"rate limited", types.AnalyzeRequest{ResumeText: "x"}, &analysis.ServiceError{Kind: analysis.KindRateLimited, Message: "rate limit exceeded"}, 429, CodeRateLimited},
		{"unavailable", types.AnalyzeRequest{ResumeText: "x"}, &analysis.ServiceError{Kind: analysis.KindUnavailable, Message: "AI service temporarily unavailable"}, 503, CodeUnavailable},
		{"failed", types.AnalyzeRequest{ResumeText: "x"}, &analysis.ServiceError{Kind: analysis.KindFailed, Message: "failed to analyze resume"}, 502, CodeUpstreamFailed},
		{"empty input", types.AnalyzeRequest{ResumeText: "x"}, analysis.ErrEmptyInput, 400, CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.analyzer.err = tt.err
			ts.analyzer.outcome = parsedOutcome()

			w := ts.do(t, http.MethodPost, "/analyze", tt.body, false)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeBody[map[string]any](t, w)["code"])
		})
	}
}

func TestHandleAnalyze_NoAnalyzer(t *testing.T) {
	ts := newTestServer(t)
	ts.Server.analyzer = nil

	w := ts.do(t, http.MethodPost, "/analyze", types.AnalyzeRequest{ResumeText: "x"}, false)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleMatch(t *testing.T) {
	ts := newTestServer(t)
	ts.analyzer.match = &analysis.MatchOutcome{Parsed: &types.JobMatchResult{
		MatchScore:      70,
		MatchedKeywords: []string{"Go"},
		MissingKeywords: []string{"Kubernetes"},
		Suggestions:     []string{},
		OverallFit:      types.FitGood,
	}}

	w := ts.do(t, http.MethodPost, "/match", types.MatchRequest{ResumeText: "Go engineer", JobDescription: "Go + Kubernetes"}, true)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, true, resp["parsed"])
	assert.Equal(t, true, resp["persisted"])
	match := resp["match"].(map[string]any)
	assert.Equal(t, "good", match["overallFit"])
	require.Len(t, ts.store.analyses, 1)
	assert.Equal(t, db.AnalysisKindMatch, ts.store.analyses[0].kind)
	assert.Nil(t, ts.store.analyses[0].resumeID)
}

func TestHandleMatch_RequiresJobDescription(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/match", types.MatchRequest{ResumeText: "x"}, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "validation error: jobDescription - jobDescription is required", body["error"])
}

func TestRequestValidationError(t *testing.T) {
	err := requestValidationError((&types.AnalyzeRequest{}).Validate())
	var verr *ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "resumeText", verr.Field)

	err = requestValidationError(errors.New("plain"))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plain", verr.Message)
}
