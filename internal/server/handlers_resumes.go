package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// ---------------------------------------------------------------------
// Saved resumes
// ---------------------------------------------------------------------

// DefaultResumeName names resumes saved without one.
const DefaultResumeName = "Untitled Resume"

const maxResumeName = 200

// SaveResumeRequest is the body of POST/PUT /resumes.
type SaveResumeRequest struct {
	Name     string          `json:"name"`
	Template string          `json:"template,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// SaveSessionRequest stores a session's document. With ResumeID it
// overwrites that resume instead of creating one.
type SaveSessionRequest struct {
	Name     string `json:"name"`
	ResumeID string `json:"resumeId,omitempty"`
}

// SaveResponse reports the id a resume was stored under.
type SaveResponse struct {
	ID        string `json:"id"`
	Persisted bool   `json:"persisted"`
}

// identity returns the signed-in caller.
func identity(r *http.Request) (middleware.Identity, error) {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		return middleware.Identity{}, errUnauthenticated
	}
	return id, nil
}

// resumeStore returns the document store or an *ErrStoreUnavailable.
func (s *Server) resumeStore(ctx context.Context) (ResumeStore, error) {
	if s.store == nil {
		return nil, &ErrStoreUnavailable{Cause: db.ErrNotConfigured}
	}
	return s.store(ctx)
}

// storeFailure marks a failed store call as an outage.
func storeFailure(err error) error {
	log.Printf("[db] store call failed: %v", err)
	return &ErrStoreUnavailable{Cause: err}
}

func resumeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultResumeName, nil
	}
	if utf8.RuneCountInString(name) > maxResumeName {
		return "", &ErrValidation{Field: "name", Message: "name is too long"}
	}
	return name, nil
}

func pathResumeID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrNotFound{Resource: "resume", ID: raw}
	}
	return id, nil
}

// decodeSaveRequest checks the body of a resume save. Saving requires a
// document that passes form validation.
func (s *Server) decodeSaveRequest(w http.ResponseWriter, r *http.Request) (string, *types.ResumeDocument, rendering.Template, error) {
	var req SaveResumeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		return "", nil, "", err
	}
	name, err := resumeName(req.Name)
	if err != nil {
		return "", nil, "", err
	}
	doc, err := decodeDocument(req.Data)
	if err != nil {
		return "", nil, "", err
	}
	if err := editor.ValidateDocument(doc); err != nil {
		return "", nil, "", err
	}
	return name, doc, s.templateOrDefault(req.Template), nil
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	store, err := s.resumeStore(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	user, err := store.UpsertUser(r.Context(), id.Email, id.Name, id.Picture)
	if err != nil {
		s.writeError(w, storeFailure(err))
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	store, err := s.resumeStore(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	resumes, err := store.ListResumes(r.Context(), id.Email)
	if err != nil {
		s.writeError(w, storeFailure(err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resumes": resumes})
}

func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	name, doc, tmpl, err := s.decodeSaveRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.saveResume(w, r, id, uuid.Nil, name, doc, tmpl)
}

func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resumeID, err := pathResumeID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	name, doc, tmpl, err := s.decodeSaveRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.saveResume(w, r, id, resumeID, name, doc, tmpl)
}

// saveResume creates a resume when resumeID is nil and overwrites it otherwise.
func (s *Server) saveResume(w http.ResponseWriter, r *http.Request, id middleware.Identity, resumeID uuid.UUID, name string, doc *types.ResumeDocument, tmpl rendering.Template) {
	store, err := s.resumeStore(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	if resumeID == uuid.Nil {
		newID, err := store.SaveResume(r.Context(), id.Email, name, doc, string(tmpl))
		if err != nil {
			s.writeError(w, storeFailure(err))
			return
		}
		s.jsonResponse(w, http.StatusCreated, SaveResponse{ID: newID.String(), Persisted: true})
		return
	}

	found, err := store.UpdateResume(r.Context(), id.Email, resumeID, name, doc, string(tmpl))
	if err != nil {
		s.writeError(w, storeFailure(err))
		return
	}
	if !found {
		s.writeError(w, &ErrNotFound{Resource: "resume", ID: resumeID.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, SaveResponse{ID: resumeID.String(), Persisted: true})
}

// loadResume fetches one of the caller's resumes.
func (s *Server) loadResume(ctx context.Context, email string, resumeID uuid.UUID) (*db.Resume, error) {
	store, err := s.resumeStore(ctx)
	if err != nil {
		return nil, err
	}
	resume, err := store.GetResume(ctx, email, resumeID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if resume == nil {
		return nil, &ErrNotFound{Resource: "resume", ID: resumeID.String()}
	}
	return resume, nil
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resumeID, err := pathResumeID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resume, err := s.loadResume(r.Context(), id.Email, resumeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resumeID, err := pathResumeID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	store, err := s.resumeStore(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	found, err := store.DeleteResume(r.Context(), id.Email, resumeID)
	if err != nil {
		s.writeError(w, storeFailure(err))
		return
	}
	if !found {
		s.writeError(w, &ErrNotFound{Resource: "resume", ID: resumeID.String()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOpenResume starts an editing session on a saved resume.
func (s *Server) handleOpenResume(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resumeID, err := pathResumeID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resume, err := s.loadResume(r.Context(), id.Email, resumeID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	e := editor.FromDocument(resume.Data, rendering.ParseTemplate(resume.Template))
	sess := s.sessions.Create(e)
	s.jsonResponse(w, http.StatusCreated, sessionResponse(sess, e))
}

// handleSaveSession persists the document of an editing session.
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req SaveSessionRequest
	if err := s.decodeOptionalJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	name, err := resumeName(req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resumeID := uuid.Nil
	if req.ResumeID != "" {
		if resumeID, err = uuid.Parse(req.ResumeID); err != nil {
			s.writeError(w, &ErrValidation{Field: "resumeId", Message: "must be a UUID"})
			return
		}
	}

	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := sess.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := snap.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	s.saveResume(w, r, id, resumeID, name, snap.Document(), snap.Template())
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	store, err := s.resumeStore(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	analyses, err := store.ListAnalyses(r.Context(), id.Email, db.DefaultAnalysisLimit)
	if err != nil {
		s.writeError(w, storeFailure(err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": analyses})
}
