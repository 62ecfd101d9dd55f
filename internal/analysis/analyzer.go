// Package analysis asks an LLM for resume feedback and job keyword matching.
package analysis

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

const promptFile = "analysis.json"

// Outcome is the result of Analyze. Exactly one of Parsed or Raw is set:
// Raw holds the model text when it could not be read as an analysis.
type Outcome struct {
	Parsed *types.AnalysisResult `json:"analysis,omitempty"`
	Raw    string                `json:"rawResponse,omitempty"`
}

// IsParsed reports whether the model returned a usable analysis.
func (o *Outcome) IsParsed() bool {
	return o.Parsed != nil
}

// MatchOutcome is the result of MatchJob, tagged the same way as Outcome.
type MatchOutcome struct {
	Parsed *types.JobMatchResult `json:"match,omitempty"`
	Raw    string                `json:"rawResponse,omitempty"`
}

// IsParsed reports whether the model returned a usable match.
func (o *MatchOutcome) IsParsed() bool {
	return o.Parsed != nil
}

// Analyzer runs resume analysis against an LLM client.
type Analyzer struct {
	client  llm.Client
	verbose bool
}

// NewAnalyzer creates an Analyzer. A nil client makes every call fail as unavailable.
func NewAnalyzer(client llm.Client, verbose bool) *Analyzer {
	return &Analyzer{client: client, verbose: verbose}
}

// Available reports whether a client is configured.
func (a *Analyzer) Available() bool {
	return a != nil && a.client != nil
}

// Analyze scores a resume, optionally against a job description.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) (*Outcome, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyInput
	}
	if strings.TrimSpace(jobDescription) == "" {
		jobDescription = prompts.MustGet(promptFile, "no-job-description")
	}

	raw, err := a.generate(ctx, "analyze-resume", resumeText, jobDescription)
	if err != nil {
		return nil, err
	}

	result, ok := decodeAnalysis(raw)
	if !ok {
		log.Printf("[analysis] model response is not a valid analysis (%d bytes), returning raw text", len(raw))
		return &Outcome{Raw: raw}, nil
	}
	if a.verbose {
		log.Printf("[analysis] ats=%d overall=%d", result.ATSScore, result.OverallScore)
	}
	return &Outcome{Parsed: result}, nil
}

// MatchJob compares a resume with a job description.
func (a *Analyzer) MatchJob(ctx context.Context, resumeText, jobDescription string) (*MatchOutcome, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, ErrEmptyInput
	}

	raw, err := a.generate(ctx, "match-job", resumeText, jobDescription)
	if err != nil {
		return nil, err
	}

	result, ok := decodeMatch(raw)
	if !ok {
		log.Printf("[analysis] model response is not a valid match (%d bytes), returning raw text", len(raw))
		return &MatchOutcome{Raw: raw}, nil
	}
	if a.verbose {
		log.Printf("[analysis] match=%d fit=%s matched=%d missing=%d",
			result.MatchScore, result.OverallFit, len(result.MatchedKeywords), len(result.MissingKeywords))
	}
	return &MatchOutcome{Parsed: result}, nil
}

func (a *Analyzer) generate(ctx context.Context, key, resumeText, jobDescription string) (string, error) {
	if !a.Available() {
		return "", &ServiceError{Kind: KindUnavailable, Message: "AI service temporarily unavailable, configure GEMINI_API_KEY"}
	}

	template := prompts.MustGet(promptFile, key)
	prompt := prompts.Format(template, map[string]string{
		"ResumeText":     resumeText,
		"JobDescription": jobDescription,
	})

	raw, err := a.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		svcErr := serviceError(err)
		log.Printf("[analysis] %s failed: %v", key, svcErr)
		return "", svcErr
	}
	return raw, nil
}

// wireAnalysis mirrors types.AnalysisResult with fractional scores.
type wireAnalysis struct {
	ATSScore        float64  `json:"atsScore"`
	OverallScore    float64  `json:"overallScore"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
}

type wireMatch struct {
	MatchScore      float64  `json:"matchScore"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	Suggestions     []string `json:"suggestions"`
	OverallFit      string   `json:"overallFit"`
}

// decodeAnalysis validates and normalizes a model response.
func decodeAnalysis(raw string) (*types.AnalysisResult, bool) {
	body := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.Analysis, body); err != nil {
		return nil, false
	}

	var w wireAnalysis
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, false
	}
	return &types.AnalysisResult{
		ATSScore:        clampScore(w.ATSScore),
		OverallScore:    clampScore(w.OverallScore),
		Strengths:       normalizeList(w.Strengths),
		Improvements:    normalizeList(w.Improvements),
		Recommendations: normalizeList(w.Recommendations),
	}, true
}

// decodeMatch validates and normalizes a model response. An unknown or
// missing fit grade is derived from the score.
func decodeMatch(raw string) (*types.JobMatchResult, bool) {
	body := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.Match, body); err != nil {
		return nil, false
	}

	var w wireMatch
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, false
	}

	score := clampScore(w.MatchScore)
	fit := types.Fit(strings.ToLower(strings.TrimSpace(w.OverallFit)))
	switch fit {
	case types.FitExcellent, types.FitGood, types.FitFair, types.FitPoor:
	default:
		fit = types.FitForScore(score)
	}

	return &types.JobMatchResult{
		MatchScore:      score,
		MatchedKeywords: NormalizeKeywords(w.MatchedKeywords),
		MissingKeywords: NormalizeKeywords(w.MissingKeywords),
		Suggestions:     normalizeList(w.Suggestions),
		OverallFit:      fit,
	}, true
}
