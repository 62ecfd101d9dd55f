// Package server provides the HTTP REST API for the resume builder.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/types"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 2 << 20

// ResumeStore is the persistence the HTTP layer uses. *db.DB implements it.
type ResumeStore interface {
	UpsertUser(ctx context.Context, email, name, image string) (*db.User, error)
	SaveResume(ctx context.Context, email, name string, doc *types.ResumeDocument, template string) (uuid.UUID, error)
	UpdateResume(ctx context.Context, email string, id uuid.UUID, name string, doc *types.ResumeDocument, template string) (bool, error)
	ListResumes(ctx context.Context, email string) ([]db.ResumeSummary, error)
	GetResume(ctx context.Context, email string, id uuid.UUID) (*db.Resume, error)
	DeleteResume(ctx context.Context, email string, id uuid.UUID) (bool, error)
	SaveAnalysis(ctx context.Context, email string, resumeID *uuid.UUID, kind string, result any) (uuid.UUID, error)
	ListAnalyses(ctx context.Context, email string, limit int) ([]db.Analysis, error)
}

// Analyzer scores resumes with the language model.
type Analyzer interface {
	Available() bool
	Analyze(ctx context.Context, resumeText, jobDescription string) (*analysis.Outcome, error)
	MatchJob(ctx context.Context, resumeText, jobDescription string) (*analysis.MatchOutcome, error)
}

// PDFExporter produces the single-page PDF of a document.
type PDFExporter interface {
	Export(ctx context.Context, doc *types.ResumeDocument, tmpl rendering.Template) (*export.Artifact, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	store          func(ctx context.Context) (ResumeStore, error)
	storeEnabled   bool
	lazyDB         *db.Lazy
	sessions       *editor.Registry
	analyzer       Analyzer
	llmClient      llm.Client
	pdf            PDFExporter
	docx           *export.DOCXExporter
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	allowedOrigins []string
	defaultTmpl    rendering.Template
}

// Config holds server configuration
type Config struct {
	Port           int
	DatabaseURL    string
	APIKey         string
	AllowedOrigins []string
	SessionTTL     time.Duration
	Template       string
	ChromePath     string
	Verbose        bool
}

// New creates a new server instance. Nothing here dials the database: the
// pool is opened on first use so the editor keeps working without one.
func New(cfg Config) (*Server, error) {
	s := &Server{
		allowedOrigins: cfg.AllowedOrigins,
		defaultTmpl:    rendering.ParseTemplate(cfg.Template),
		docx:           export.NewDOCXExporter(),
	}

	// Document store
	s.lazyDB = db.NewLazy(cfg.DatabaseURL)
	s.lazyDB.OnConnect(func(ctx context.Context, database *db.DB) error {
		applied, err := database.Migrate(ctx)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			log.Printf("[db] applied migrations: %s", strings.Join(applied, ", "))
		}
		return nil
	})
	s.storeEnabled = s.lazyDB.Configured()
	s.store = func(ctx context.Context) (ResumeStore, error) {
		database, err := s.lazyDB.Get(ctx)
		if err != nil {
			return nil, &ErrStoreUnavailable{Cause: err}
		}
		return database, nil
	}
	if !s.storeEnabled {
		log.Printf("[server] DATABASE_URL not set, persistence disabled")
	}

	// Editing sessions
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	s.sessions = editor.NewRegistry(ttl, ttl/4)

	// Language model analysis. Without a key the endpoints answer 503.
	var client llm.Client
	if cfg.APIKey != "" {
		c, err := newLLMClient(cfg.APIKey)
		if err != nil {
			log.Printf("[server] analysis disabled: %v", err)
		} else {
			client = c
			s.llmClient = c
		}
	} else {
		log.Printf("[server] GEMINI_API_KEY not set, analysis disabled")
	}
	s.analyzer = analysis.NewAnalyzer(client, cfg.Verbose)

	// PDF export
	chromeConfig, err := config.NewChromeConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create chrome config: %w", err)
	}
	if cfg.ChromePath != "" {
		chromeConfig.ExecPath = cfg.ChromePath
	}
	s.pdf = export.NewPDFExporter(export.NewChromeBrowser(chromeConfig, cfg.Verbose), cfg.Verbose)

	rateConfig, err := ratelimit.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load rate limit config: %w", err)
	}
	s.rateLimiter = ratelimit.NewLimiter(rateConfig)

	// Session tokens are optional: without a secret every caller is anonymous.
	jwtConfig, err := config.NewJWTConfig()
	switch {
	case errors.Is(err, config.ErrJWTSecretMissing):
		log.Printf("[server] JWT_SECRET not set, all requests are anonymous")
	case err != nil:
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	default:
		s.jwtService = NewJWTService(jwtConfig)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // PDF capture and analysis are slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// newLLMClient builds the analysis client from the GEMINI_* environment.
func newLLMClient(apiKey string) (llm.Client, error) {
	llmConfig, err := llm.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return llm.NewClient(context.Background(), llmConfig, apiKey)
}

// routes registers every endpoint on a new mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /templates", s.handleTemplates)

	// Stateless rendering and export of a posted document
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("POST /preview", s.handlePreview)
	mux.HandleFunc("POST /export/{format}", s.handleExport)

	// Editing sessions
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("PUT /sessions/{id}/personal", s.handleSetPersonalInfo)
	mux.HandleFunc("PUT /sessions/{id}/template", s.handleSetTemplate)
	mux.HandleFunc("POST /sessions/{id}/step", s.handleStep)
	mux.HandleFunc("GET /sessions/{id}/validate", s.handleValidateSession)
	mux.HandleFunc("GET /sessions/{id}/preview", s.handleSessionPreview)
	mux.HandleFunc("POST /sessions/{id}/export/{format}", s.handleSessionExport)
	mux.HandleFunc("POST /sessions/{id}/sections/{section}", s.handleAddEntry)
	mux.HandleFunc("PUT /sessions/{id}/sections/{section}/{entry}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /sessions/{id}/sections/{section}/{entry}", s.handleRemoveEntry)
	mux.HandleFunc("POST /sessions/{id}/sections/{section}/{entry}/duplicate", s.handleDuplicateEntry)
	mux.HandleFunc("POST /sessions/{id}/sections/{section}/{entry}/move", s.handleMoveEntry)
	mux.Handle("POST /sessions/{id}/save", middleware.RequireIdentity(http.HandlerFunc(s.handleSaveSession)))

	// Saved resumes (signed-in users only)
	mux.Handle("GET /me", middleware.RequireIdentity(http.HandlerFunc(s.handleMe)))
	mux.Handle("GET /resumes", middleware.RequireIdentity(http.HandlerFunc(s.handleListResumes)))
	mux.Handle("POST /resumes", middleware.RequireIdentity(http.HandlerFunc(s.handleCreateResume)))
	mux.Handle("GET /resumes/{id}", middleware.RequireIdentity(http.HandlerFunc(s.handleGetResume)))
	mux.Handle("PUT /resumes/{id}", middleware.RequireIdentity(http.HandlerFunc(s.handleUpdateResume)))
	mux.Handle("DELETE /resumes/{id}", middleware.RequireIdentity(http.HandlerFunc(s.handleDeleteResume)))
	mux.Handle("POST /resumes/{id}/sessions", middleware.RequireIdentity(http.HandlerFunc(s.handleOpenResume)))
	mux.Handle("GET /analyses", middleware.RequireIdentity(http.HandlerFunc(s.handleListAnalyses)))

	// Language model analysis
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /match", s.handleMatch)
	return mux
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var validator middleware.TokenValidator
	if s.jwtService != nil {
		validator = s.jwtService.AsTokenValidator()
	}
	// Rate limiting runs after auth so signed-in callers are charged by account.
	authed := middleware.OptionalAuth(validator)(s.withRateLimit(s.routes()))
	return s.withLogging(s.withCORS(authed))
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases background resources: the rate limiter sweeper, the
// session sweeper and the database pool.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.sessions != nil {
		s.sessions.Stop()
	}
	if s.lazyDB != nil {
		s.lazyDB.Close()
	}
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("[server] closing llm client: %v", err)
		}
	}
}

// withCORS adds CORS headers for the configured origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not allowed.
func (s *Server) allowOrigin(origin string) string {
	if len(s.allowedOrigins) == 0 {
		return "*"
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil || r.Method == "OPTIONS" {
			next.ServeHTTP(w, r)
			return
		}

		allowed, info := s.rateLimiter.Allow(rateClient(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"sessions": 0,
		"analysis": s.analyzer != nil && s.analyzer.Available(),
		"database": "disabled",
	}
	if s.sessions != nil {
		resp["sessions"] = s.sessions.Len()
	}
	if s.storeEnabled && s.lazyDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp["database"] = "ok"
		database, err := s.lazyDB.Get(ctx)
		if err == nil {
			err = database.Ping(ctx)
		}
		if err != nil {
			resp["database"] = "unavailable"
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleTemplates lists the selectable templates.
func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"templates": rendering.Templates(),
		"default":   s.defaultTemplate(),
	})
}

func (s *Server) defaultTemplate() rendering.Template {
	if s.defaultTmpl == "" {
		return rendering.DefaultTemplate
	}
	return s.defaultTmpl
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message, "code": code})
}

// writeError maps err to a status and writes the error body. Validation
// failures carry their field list; store outages report persisted:false.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s: %v", code, err)
	}

	body := map[string]any{"error": publicMessage(err, status), "code": code}

	var editorErr *editor.ValidationError
	var schemaErr *schemas.ValidationError
	var storeErr *ErrStoreUnavailable
	switch {
	case errors.As(err, &editorErr):
		body["fields"] = editorErr.Fields
	case errors.As(err, &schemaErr):
		fields := make([]editor.FieldError, 0, len(schemaErr.Errors))
		for _, fe := range schemaErr.Errors {
			fields = append(fields, editor.FieldError{Field: fe.Field, Message: fe.Message})
		}
		body["fields"] = fields
	case errors.As(err, &storeErr), errors.Is(err, db.ErrNotConfigured), errors.Is(err, db.ErrClosed):
		body["persisted"] = false
	}
	var serviceErr *analysis.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Kind == analysis.KindRateLimited {
		w.Header().Set("Retry-After", "60")
	}

	s.jsonResponse(w, status, body)
}

// decodeJSON decodes a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}

// rateClient identifies the caller for rate limiting: the signed-in
// account when there is one, and the remote IP either way.
func rateClient(r *http.Request) ratelimit.Client {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	client := ratelimit.Client{IP: ip}
	if identity, ok := middleware.GetIdentity(r); ok {
		client.Email = identity.Email
	}
	return client
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "Rate limit exceeded. Please try again later.",
		"code":      CodeRateLimited,
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(math.Ceil(info.RetryAfter.Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
