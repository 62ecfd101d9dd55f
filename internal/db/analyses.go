package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DefaultAnalysisLimit caps ListAnalyses when no limit is given.
const DefaultAnalysisLimit = 20

// SaveAnalysis appends an analysis result to the user's history.
// resumeID is optional.
func (db *DB) SaveAnalysis(ctx context.Context, email string, resumeID *uuid.UUID, kind string, result any) (uuid.UUID, error) {
	userID, err := db.userIDByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO analyses (id, user_id, resume_id, kind, result)
		 VALUES ($1, $2,
		   (SELECT id FROM resumes WHERE id = $3 AND user_id = $2),
		   $4, $5)`,
		id, userID, resumeID, kind, body,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return id, nil
}

// ListAnalyses returns the user's most recent analyses, newest first.
func (db *DB) ListAnalyses(ctx context.Context, email string, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = DefaultAnalysisLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT a.id, a.resume_id, a.kind, a.result, a.created_at
		 FROM analyses a JOIN users u ON u.id = a.user_id
		 WHERE u.email = $1
		 ORDER BY a.created_at DESC
		 LIMIT $2`,
		normalizeEmail(email), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		var a Analysis
		var result []byte
		if err := rows.Scan(&a.ID, &a.ResumeID, &a.Kind, &result, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a.Result = json.RawMessage(result)
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return analyses, nil
}
