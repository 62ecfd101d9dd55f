package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// ---------------------------------------------------------------------
// Editing sessions
// ---------------------------------------------------------------------

// SessionResponse is the state of an editing session.
type SessionResponse struct {
	ID        string                `json:"id"`
	Step      editor.Step           `json:"step"`
	StepTitle string                `json:"stepTitle"`
	Template  rendering.Template    `json:"template"`
	Document  *types.ResumeDocument `json:"document"`
	Exporting bool                  `json:"exporting"`
}

func sessionResponse(sess *editor.Session, e *editor.Editor) SessionResponse {
	return SessionResponse{
		ID:        sess.ID,
		Step:      e.Step(),
		StepTitle: e.Step().Title(),
		Template:  e.Template(),
		Document:  e.Document(),
		Exporting: sess.Exporting(),
	}
}

// CreateSessionRequest optionally seeds a new session.
type CreateSessionRequest struct {
	Document json.RawMessage `json:"document,omitempty"`
	Template string          `json:"template,omitempty"`
}

// StepRequest moves the wizard: Action is "next" or "prev", or Step names a target.
type StepRequest struct {
	Action string `json:"action,omitempty"`
	Step   string `json:"step,omitempty"`
}

// TemplateRequest selects a template.
type TemplateRequest struct {
	Template string `json:"template"`
}

// MoveRequest places an entry at Index within its section.
type MoveRequest struct {
	Index int `json:"index"`
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be empty.
func (s *Server) decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &ErrValidation{Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}

// session looks up the {id} path session.
func (s *Server) session(r *http.Request) (*editor.Session, error) {
	if s.sessions == nil {
		return nil, editor.ErrSessionNotFound
	}
	return s.sessions.Get(r.PathValue("id"))
}

// mutate runs fn on the path session and answers with the new session state.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(*editor.Editor) error) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var resp SessionResponse
	err = sess.Do(func(e *editor.Editor) error {
		if err := fn(e); err != nil {
			return err
		}
		resp = sessionResponse(sess, e)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, status, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := s.decodeOptionalJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var e *editor.Editor
	if len(req.Document) > 0 && string(req.Document) != "null" {
		doc, err := decodeDocument(req.Document)
		if err != nil {
			s.writeError(w, err)
			return
		}
		e = editor.FromDocument(doc, s.templateOrDefault(req.Template))
	} else {
		e = editor.New()
		e.SetTemplate(string(s.templateOrDefault(req.Template)))
	}

	sess := s.sessions.Create(e)
	s.jsonResponse(w, http.StatusCreated, sessionResponse(sess, e))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusOK, func(*editor.Editor) error { return nil })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session(r); err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPersonalInfo(w http.ResponseWriter, r *http.Request) {
	var info types.PersonalInfo
	if err := s.decodeJSON(w, r, &info); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(e *editor.Editor) error {
		e.SetPersonalInfo(info)
		return nil
	})
}

func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(e *editor.Editor) error {
		e.SetTemplate(req.Template)
		return nil
	})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(e *editor.Editor) error {
		switch {
		case req.Step != "":
			step, err := editor.ParseStep(req.Step)
			if err != nil {
				return &ErrValidation{Field: "step", Message: err.Error()}
			}
			return e.GoTo(step)
		case req.Action == "next":
			e.Next()
		case req.Action == "prev":
			e.Prev()
		default:
			return &ErrValidation{Field: "action", Message: `action must be "next" or "prev"`}
		}
		return nil
	})
}

// handleValidateSession reports field errors without changing anything.
// Navigation never depends on the result.
func (s *Server) handleValidateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fields := []editor.FieldError{}
	err = sess.Do(func(e *editor.Editor) error {
		var verr *editor.ValidationError
		if errors.As(e.Validate(), &verr) {
			fields = verr.Fields
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"valid": len(fields) == 0, "fields": fields})
}

// handleSessionPreview renders the live preview. ?format=json returns the
// laid-out view instead of HTML.
func (s *Server) handleSessionPreview(w http.ResponseWriter, r *http.Request) {
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

	if r.URL.Query().Get("format") == "json" {
		s.jsonResponse(w, http.StatusOK, snap.View())
		return
	}
	s.htmlResponse(w, snap.Document(), snap.Template())
}

// handleSessionExport exports the session's current document. A second PDF
// export of the same session fails with 409 while the first is running.
func (s *Server) handleSessionExport(w http.ResponseWriter, r *http.Request) {
	format, err := parseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if format == export.FormatPDF {
		done, err := sess.BeginExport()
		if err != nil {
			s.writeError(w, err)
			return
		}
		defer done()
	}

	snap, err := sess.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifact, err := s.exportDocument(r.Context(), format, snap.Document(), snap.Template())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.artifactResponse(w, artifact)
}

// ---------------------------------------------------------------------
// Section entries
// ---------------------------------------------------------------------

func pathSection(r *http.Request) (editor.Section, error) {
	name := r.PathValue("section")
	section, err := editor.ParseSection(name)
	if err != nil {
		return "", &ErrNotFound{Resource: "section", ID: name}
	}
	return section, nil
}

// addEntry decodes raw as an entry of section and appends it. An empty body
// appends a blank entry.
func addEntry(e *editor.Editor, section editor.Section, raw json.RawMessage) (string, error) {
	switch section {
	case editor.SectionEducation:
		var entry types.EducationEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return "", err
		}
		return e.AddEducation(entry), nil
	case editor.SectionExperience:
		var entry types.ExperienceEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return "", err
		}
		return e.AddExperience(entry), nil
	case editor.SectionSkills:
		var entry types.SkillEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return "", err
		}
		return e.AddSkill(entry), nil
	case editor.SectionProjects:
		var entry types.ProjectEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return "", err
		}
		return e.AddProject(entry), nil
	case editor.SectionCertifications:
		var entry types.CertificationEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return "", err
		}
		return e.AddCertification(entry), nil
	}
	return "", &ErrNotFound{Resource: "section", ID: string(section)}
}

// updateEntry replaces the entry id of section with raw.
func updateEntry(e *editor.Editor, section editor.Section, id string, raw json.RawMessage) error {
	switch section {
	case editor.SectionEducation:
		var entry types.EducationEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return err
		}
		return e.UpdateEducation(id, entry)
	case editor.SectionExperience:
		var entry types.ExperienceEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return err
		}
		return e.UpdateExperience(id, entry)
	case editor.SectionSkills:
		var entry types.SkillEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return err
		}
		return e.UpdateSkill(id, entry)
	case editor.SectionProjects:
		var entry types.ProjectEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return err
		}
		return e.UpdateProject(id, entry)
	case editor.SectionCertifications:
		var entry types.CertificationEntry
		if err := decodeEntry(raw, &entry); err != nil {
			return err
		}
		return e.UpdateCertification(id, entry)
	}
	return &ErrNotFound{Resource: "section", ID: string(section)}
}

func decodeEntry(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ErrValidation{Field: "entry", Message: err.Error()}
	}
	return nil
}

// readEntry reads the raw entry body; it may be empty.
func (s *Server) readEntry(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.decodeOptionalJSON(w, r, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// entryResponse wraps the session state with the id of the touched entry.
type entryResponse struct {
	EntryID string `json:"entryId"`
	SessionResponse
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	section, err := pathSection(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	raw, err := s.readEntry(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.entryOp(w, r, http.StatusCreated, func(e *editor.Editor) (string, error) {
		return addEntry(e, section, raw)
	})
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	section, err := pathSection(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	raw, err := s.readEntry(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := r.PathValue("entry")
	s.entryOp(w, r, http.StatusOK, func(e *editor.Editor) (string, error) {
		return id, updateEntry(e, section, id, raw)
	})
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	section, err := pathSection(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := r.PathValue("entry")
	s.entryOp(w, r, http.StatusOK, func(e *editor.Editor) (string, error) {
		return id, e.Remove(section, id)
	})
}

func (s *Server) handleDuplicateEntry(w http.ResponseWriter, r *http.Request) {
	section, err := pathSection(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := r.PathValue("entry")
	s.entryOp(w, r, http.StatusCreated, func(e *editor.Editor) (string, error) {
		return e.Duplicate(section, id)
	})
}

func (s *Server) handleMoveEntry(w http.ResponseWriter, r *http.Request) {
	section, err := pathSection(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req MoveRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id := r.PathValue("entry")
	s.entryOp(w, r, http.StatusOK, func(e *editor.Editor) (string, error) {
		return id, e.Move(section, id, req.Index)
	})
}

// entryOp is mutate for operations that report an entry id.
func (s *Server) entryOp(w http.ResponseWriter, r *http.Request, status int, fn func(*editor.Editor) (string, error)) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var resp entryResponse
	err = sess.Do(func(e *editor.Editor) error {
		id, err := fn(e)
		if err != nil {
			return err
		}
		resp = entryResponse{EntryID: id, SessionResponse: sessionResponse(sess, e)}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, status, resp)
}
