package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/types"
)

// userIDByEmail resolves an email to a user id, creating the user when needed.
func (db *DB) userIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	u, err := db.UpsertUser(ctx, email, "", "")
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

// SaveResume stores a new resume for the user with the given email.
func (db *DB) SaveResume(ctx context.Context, email, name string, doc *types.ResumeDocument, template string) (uuid.UUID, error) {
	if doc == nil {
		return uuid.Nil, errors.New("resume document is required")
	}
	userID, err := db.userIDByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal resume: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO resumes (id, user_id, name, template, data) VALUES ($1, $2, $3, $4, $5)`,
		id, userID, name, template, data,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return id, nil
}

// UpdateResume replaces a saved resume. It reports false when the resume does
// not exist or belongs to another user.
func (db *DB) UpdateResume(ctx context.Context, email string, id uuid.UUID, name string, doc *types.ResumeDocument, template string) (bool, error) {
	if doc == nil {
		return false, errors.New("resume document is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("failed to marshal resume: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE resumes r SET name = $3, template = $4, data = $5, updated_at = NOW()
		 FROM users u
		 WHERE r.user_id = u.id AND u.email = $1 AND r.id = $2`,
		normalizeEmail(email), id, name, template, data,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update resume: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListResumes returns the user's resumes, most recently updated first.
func (db *DB) ListResumes(ctx context.Context, email string) ([]ResumeSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT r.id, r.name, r.template, r.created_at, r.updated_at
		 FROM resumes r JOIN users u ON u.id = r.user_id
		 WHERE u.email = $1
		 ORDER BY r.updated_at DESC`,
		normalizeEmail(email),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	summaries := []ResumeSummary{}
	for rows.Next() {
		var s ResumeSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Template, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return summaries, nil
}

// GetResume retrieves one of the user's resumes. Returns nil, nil when not found.
func (db *DB) GetResume(ctx context.Context, email string, id uuid.UUID) (*Resume, error) {
	var r Resume
	var data []byte
	err := db.pool.QueryRow(ctx,
		`SELECT r.id, r.name, r.template, r.created_at, r.updated_at, r.data
		 FROM resumes r JOIN users u ON u.id = r.user_id
		 WHERE u.email = $1 AND r.id = $2`,
		normalizeEmail(email), id,
	).Scan(&r.ID, &r.Name, &r.Template, &r.CreatedAt, &r.UpdatedAt, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	r.Data = &types.ResumeDocument{}
	if err := json.Unmarshal(data, r.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume %s: %w", id, err)
	}
	return &r, nil
}

// DeleteResume removes one of the user's resumes and reports whether it existed.
func (db *DB) DeleteResume(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM resumes r USING users u
		 WHERE r.user_id = u.id AND u.email = $1 AND r.id = $2`,
		normalizeEmail(email), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete resume: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
