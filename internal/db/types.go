package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
)

// User is an account identified by the email of its session token.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResumeSummary is a saved resume without its document.
type ResumeSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Resume is a saved resume with its document.
type Resume struct {
	ResumeSummary
	Data *types.ResumeDocument `json:"data"`
}

// Analysis kinds stored in the history.
const (
	AnalysisKindResume = "analysis"
	AnalysisKindMatch  = "match"
)

// Analysis is one entry of a user's analysis history.
type Analysis struct {
	ID        uuid.UUID       `json:"id"`
	ResumeID  *uuid.UUID      `json:"resumeId,omitempty"`
	Kind      string          `json:"kind"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}
