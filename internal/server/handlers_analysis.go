package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// ---------------------------------------------------------------------
// Language model analysis
// ---------------------------------------------------------------------

// AnalyzeResponse wraps an analysis outcome. Persisted reports whether the
// result was added to the caller's history.
type AnalyzeResponse struct {
	*analysis.Outcome
	Parsed    bool `json:"parsed"`
	Persisted bool `json:"persisted"`
}

// MatchResponse wraps a job match outcome.
type MatchResponse struct {
	*analysis.MatchOutcome
	Parsed    bool `json:"parsed"`
	Persisted bool `json:"persisted"`
}

// requestValidationError turns the first validator failure into an *ErrValidation.
func requestValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := jsonName(fe.Field())
		switch fe.Tag() {
		case "required":
			return &ErrValidation{Field: field, Message: field + " is required"}
		case "uuid":
			return &ErrValidation{Field: field, Message: field + " must be a UUID"}
		}
		return &ErrValidation{Field: field, Message: "invalid value"}
	}
	return &ErrValidation{Message: err.Error()}
}

// jsonName lowercases the first letter of a Go field name.
func jsonName(field string) string {
	if field == "" {
		return field
	}
	runes := []rune(field)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func (s *Server) analysisService() (Analyzer, error) {
	if s.analyzer == nil {
		return nil, &analysis.ServiceError{Kind: analysis.KindUnavailable, Message: "AI service is not configured"}
	}
	return s.analyzer, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, requestValidationError(err))
		return
	}
	analyzer, err := s.analysisService()
	if err != nil {
		s.writeError(w, err)
		return
	}

	outcome, err := analyzer.Analyze(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := AnalyzeResponse{Outcome: outcome, Parsed: outcome.IsParsed()}
	if outcome.IsParsed() {
		resp.Persisted = s.recordAnalysis(r, req.ResumeID, db.AnalysisKindResume, outcome.Parsed)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, requestValidationError(err))
		return
	}
	analyzer, err := s.analysisService()
	if err != nil {
		s.writeError(w, err)
		return
	}

	outcome, err := analyzer.MatchJob(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := MatchResponse{MatchOutcome: outcome, Parsed: outcome.IsParsed()}
	if outcome.IsParsed() {
		resp.Persisted = s.recordAnalysis(r, req.ResumeID, db.AnalysisKindMatch, outcome.Parsed)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// recordAnalysis adds a parsed result to a signed-in caller's history.
// Anonymous callers and store outages only cost the history entry.
func (s *Server) recordAnalysis(r *http.Request, resumeID, kind string, result any) bool {
	id, ok := middleware.GetIdentity(r)
	if !ok || !s.storeEnabled {
		return false
	}

	var ref *uuid.UUID
	if parsed, err := uuid.Parse(strings.TrimSpace(resumeID)); err == nil {
		ref = &parsed
	}

	// Detached from the client connection, bounded by the connect timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), db.DefaultConnectTimeout)
	defer cancel()

	store, err := s.resumeStore(ctx)
	if err != nil {
		log.Printf("[analysis] not recorded: %v", err)
		return false
	}
	if _, err := store.SaveAnalysis(ctx, id.Email, ref, kind, result); err != nil {
		log.Printf("[analysis] not recorded: %v", err)
		return false
	}
	return true
}
