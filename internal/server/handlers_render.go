package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// ---------------------------------------------------------------------
// Stateless rendering and export
// ---------------------------------------------------------------------

// DocumentRequest carries a complete resume document and a template selector.
type DocumentRequest struct {
	Document json.RawMessage `json:"document"`
	Template string          `json:"template,omitempty"`
}

// decodeDocument checks raw against the resume schema before decoding it.
func decodeDocument(raw json.RawMessage) (*types.ResumeDocument, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, &ErrValidation{Field: "document", Message: "document is required"}
	}
	if err := schemas.Validate(schemas.Resume, raw); err != nil {
		return nil, err
	}
	var doc types.ResumeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ErrValidation{Field: "document", Message: err.Error()}
	}
	return &doc, nil
}

// templateOrDefault resolves a selector, falling back to the server default
// when empty. Unknown selectors resolve to the rendering fallback.
func (s *Server) templateOrDefault(selector string) rendering.Template {
	if selector == "" {
		return s.defaultTemplate()
	}
	return rendering.ParseTemplate(selector)
}

func (s *Server) decodeDocumentRequest(w http.ResponseWriter, r *http.Request) (*types.ResumeDocument, rendering.Template, error) {
	var req DocumentRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		return nil, "", err
	}
	doc, err := decodeDocument(req.Document)
	if err != nil {
		return nil, "", err
	}
	return doc, s.templateOrDefault(req.Template), nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, tmpl, err := s.decodeDocumentRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.htmlResponse(w, doc, tmpl)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	doc, tmpl, err := s.decodeDocumentRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rendering.Render(doc, tmpl))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := parseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, tmpl, err := s.decodeDocumentRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	artifact, err := s.exportDocument(r.Context(), format, doc, tmpl)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.artifactResponse(w, artifact)
}

// parseFormat accepts the supported export formats.
func parseFormat(name string) (export.Format, error) {
	switch export.Format(name) {
	case export.FormatPDF, export.FormatDOCX:
		return export.Format(name), nil
	}
	return "", &ErrValidation{Field: "format", Message: fmt.Sprintf("unsupported export format %q", name)}
}

// exportDocument runs the exporter for format. PDF goes through the headless
// browser; DOCX is built from the document text alone.
func (s *Server) exportDocument(ctx context.Context, format export.Format, doc *types.ResumeDocument, tmpl rendering.Template) (*export.Artifact, error) {
	switch format {
	case export.FormatPDF:
		if s.pdf == nil {
			return nil, &export.RenderCaptureError{Message: "PDF export is not configured"}
		}
		return s.pdf.Export(ctx, doc, tmpl)
	default:
		docx := s.docx
		if docx == nil {
			docx = export.NewDOCXExporter()
		}
		return docx.Export(doc)
	}
}

// htmlResponse writes the rendered HTML page of doc.
func (s *Server) htmlResponse(w http.ResponseWriter, doc *types.ResumeDocument, tmpl rendering.Template) {
	html, err := rendering.RenderHTML(doc, tmpl)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}

// artifactResponse streams an export as a download.
func (s *Server) artifactResponse(w http.ResponseWriter, artifact *export.Artifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		log.Printf("Error writing %s: %v", artifact.Filename, err)
	}
}
