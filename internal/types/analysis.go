package types

import "github.com/go-playground/validator/v10"

// AnalysisResult is the fixed shape the results display depends on.
type AnalysisResult struct {
	ATSScore        int      `json:"atsScore"`
	OverallScore    int      `json:"overallScore"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
}

// JobMatchResult is the keyword comparison of a resume against a job description.
type JobMatchResult struct {
	MatchScore      int      `json:"matchScore"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	Suggestions     []string `json:"suggestions"`
	OverallFit      Fit      `json:"overallFit"`
}

// Fit grades a job match.
type Fit string

// Fit grades, best first.
const (
	FitExcellent Fit = "excellent"
	FitGood      Fit = "good"
	FitFair      Fit = "fair"
	FitPoor      Fit = "poor"
)

// FitForScore maps a 0-100 match score to a grade.
func FitForScore(score int) Fit {
	switch {
	case score >= 85:
		return FitExcellent
	case score >= 65:
		return FitGood
	case score >= 40:
		return FitFair
	default:
		return FitPoor
	}
}

// AnalyzeRequest is the request body for resume analysis.
type AnalyzeRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription,omitempty"`
	ResumeID       string `json:"resumeId,omitempty" validate:"omitempty,uuid"`
}

// MatchRequest is the request body for job matching.
type MatchRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
	ResumeID       string `json:"resumeId,omitempty" validate:"omitempty,uuid"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
