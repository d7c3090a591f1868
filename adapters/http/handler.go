// Package http serves the loaded schema document over a read-only HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/schemakit/adapters/metrics"
	"github.com/artpar/schemakit/core/convention"
	"github.com/artpar/schemakit/core/registry"
	"github.com/artpar/schemakit/core/schema"
	_ "github.com/artpar/schemakit/docs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// ErrorResponseBody is the body of every error response.
type ErrorResponseBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// SummaryResponse describes the current document without its definitions.
type SummaryResponse struct {
	Fingerprint string         `json:"fingerprint"`
	LoadedAt    *time.Time     `json:"loaded_at,omitempty"`
	Generation  uint64         `json:"generation"`
	Counts      schema.Summary `json:"counts"`
	Entities    []string       `json:"entities"`
}

// EntityResponse is a single entity with its resolved table name.
type EntityResponse struct {
	Name   string        `json:"name"`
	Table  string        `json:"table"`
	Entity schema.Entity `json:"entity"`
}

// ValidationResponse reports the outcome of validating the document.
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// Source provides the document being served.
type Source interface {
	Current() (registry.State, bool)
	Entity(name string) (schema.Entity, error)
}

// Reloader reloads the document on demand.
type Reloader interface {
	Reload(ctx context.Context, trigger string) error
}

// SchemaHandler serves the document held by a Source.
type SchemaHandler struct {
	source   Source
	reloader Reloader
	logger   zerolog.Logger
}

// NewSchemaHandler creates a new schema handler. reloader may be nil, in
// which case the reload endpoint is not mounted.
func NewSchemaHandler(source Source, reloader Reloader, logger zerolog.Logger) *SchemaHandler {
	return &SchemaHandler{
		source:   source,
		reloader: reloader,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// Routes mounts the schema endpoints on r.
func (h *SchemaHandler) Routes(r chi.Router) {
	r.Get("/", h.Document)
	r.Get("/summary", h.Summary)
	r.Get("/entities", h.Entities)
	r.Get("/entities/{name}", h.Entity)
	r.Get("/relationships", h.Relationships)
	r.Get("/indexes", h.Indexes)
	r.Get("/migrations", h.Migrations)
	r.Get("/seeds", h.Seeds)
	r.Get("/validate", h.Validate)
	if h.reloader != nil {
		r.Post("/reload", h.Reload)
	}
}

// Document returns the whole document. The fingerprint doubles as ETag.
//
//	@Summary		Get document
//	@Description	Returns the merged schema document. The fingerprint is sent as ETag and honored in If-None-Match.
//	@Tags			Schema
//	@Produce		json
//	@Param			If-None-Match	header		string			false	"Fingerprint of a cached copy"
//	@Success		200				{object}	schema.Document	"Schema document"
//	@Success		304				"Not modified"
//	@Router			/schema [get]
func (h *SchemaHandler) Document(w http.ResponseWriter, r *http.Request) {
	state, ok := h.source.Current()
	if ok {
		etag := strconv.Quote(state.Fingerprint)
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	writeJSON(w, http.StatusOK, state.Document)
}

// Summary returns counts and metadata for the current document.
//
//	@Summary	Get summary
//	@Tags		Schema
//	@Produce	json
//	@Success	200	{object}	SummaryResponse	"Counts and metadata"
//	@Router		/schema/summary [get]
func (h *SchemaHandler) Summary(w http.ResponseWriter, r *http.Request) {
	state, ok := h.source.Current()
	resp := SummaryResponse{
		Fingerprint: state.Fingerprint,
		Generation:  state.Generation,
		Counts:      state.Document.Summary(),
		Entities:    state.Document.EntityNames(),
	}
	if ok {
		loadedAt := state.LoadedAt.UTC()
		resp.LoadedAt = &loadedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// Entities lists every entity in name order.
//
//	@Summary	List entities
//	@Tags		Schema
//	@Produce	json
//	@Success	200	{array}	EntityResponse	"Entities in name order"
//	@Router		/schema/entities [get]
func (h *SchemaHandler) Entities(w http.ResponseWriter, r *http.Request) {
	state, _ := h.source.Current()
	doc := state.Document

	resp := make([]EntityResponse, 0, len(doc.Schema))
	for _, name := range doc.EntityNames() {
		resp = append(resp, entityResponse(name, doc.Schema[name]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Entity returns one entity by name.
//
//	@Summary	Get entity
//	@Tags		Schema
//	@Produce	json
//	@Param		name	path		string				true	"Entity name"
//	@Success	200		{object}	EntityResponse		"Entity"
//	@Failure	404		{object}	ErrorResponseBody	"Unknown entity"
//	@Router		/schema/entities/{name} [get]
func (h *SchemaHandler) Entity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	e, err := h.source.Entity(name)
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "entity "+strconv.Quote(name)+" not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("entity", name).Msg("entity lookup failed")
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entityResponse(name, e))
}

// Relationships returns the typed relationship views in load order.
//
//	@Summary	List relationships
//	@Tags		Schema
//	@Produce	json
//	@Success	200	{array}	object	"Relationships in load order"
//	@Router		/schema/relationships [get]
func (h *SchemaHandler) Relationships(w http.ResponseWriter, r *http.Request) {
	state, _ := h.source.Current()

	resp := make([]schema.Relationship, 0, len(state.Document.Relationships))
	for _, def := range state.Document.Relationships {
		resp = append(resp, schema.DecodeRelationship(def))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Indexes returns the typed index views in load order.
//
//	@Summary	List indexes
//	@Tags		Schema
//	@Produce	json
//	@Success	200	{array}	object	"Indexes in load order"
//	@Router		/schema/indexes [get]
func (h *SchemaHandler) Indexes(w http.ResponseWriter, r *http.Request) {
	state, _ := h.source.Current()

	resp := make([]schema.Index, 0, len(state.Document.Indexes))
	for _, def := range state.Document.Indexes {
		resp = append(resp, schema.DecodeIndex(def))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Migrations returns the migrations in load order.
//
//	@Summary	List migrations
//	@Tags		Schema
//	@Produce	json
//	@Success	200	{array}	schema.Migration	"Migrations in load order"
//	@Router		/schema/migrations [get]
func (h *SchemaHandler) Migrations(w http.ResponseWriter, r *http.Request) {
	state, _ := h.source.Current()
	writeJSON(w, http.StatusOK, nonNil(state.Document.Migrations))
}

// Seeds returns the seeds in load order.
//
//	@Summary	List seeds
//	@Tags		Schema
//	@Produce	json
//	@Success	200	{array}	schema.Seed	"Seeds in load order"
//	@Router		/schema/seeds [get]
func (h *SchemaHandler) Seeds(w http.ResponseWriter, r *http.Request) {
	state, _ := h.source.Current()
	writeJSON(w, http.StatusOK, nonNil(state.Document.Seeds))
}

// Validate checks the current document for consistency problems.
//
//	@Summary	Validate document
//	@Tags		Schema
//	@Produce	json
//	@Success	200	{object}	ValidationResponse	"Document is consistent"
//	@Failure	422	{object}	ValidationResponse	"Problems found"
//	@Router		/schema/validate [get]
func (h *SchemaHandler) Validate(w http.ResponseWriter, r *http.Request) {
	state, _ := h.source.Current()

	err := schema.Validate(state.Document)
	if err == nil {
		writeJSON(w, http.StatusOK, ValidationResponse{Valid: true})
		return
	}

	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Problems: verr.Problems})
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

// Reload reloads the document and returns the new summary.
//
//	@Summary	Reload document
//	@Tags		Schema
//	@Produce	json
//	@Success	200	{object}	SummaryResponse		"Summary after reload"
//	@Failure	500	{object}	ErrorResponseBody	"Reload failed"
//	@Router		/schema/reload [post]
func (h *SchemaHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.reloader.Reload(r.Context(), "http"); err != nil {
		h.logger.Error().Err(err).Msg("reload failed")
		writeError(w, http.StatusInternalServerError, "reload_failed", err.Error())
		return
	}
	h.Summary(w, r)
}

func entityResponse(name string, e schema.Entity) EntityResponse {
	table := e.Table
	if table == "" {
		table = convention.TableName(name)
	}
	return EntityResponse{Name: name, Table: table, Entity: e}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponseBody{Error: ErrorDetail{Code: code, Message: message}})
}

// Liveness returns a simple liveness check.
//
//	@Summary	Liveness check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	HealthResponse	"Process is up"
//	@Router		/healthz [get]
func Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness reports ready once a document has been published.
//
//	@Summary	Readiness check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	HealthResponse	"A document is published"
//	@Failure	503	{object}	HealthResponse	"Still loading"
//	@Router		/readyz [get]
func Readiness(source Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := source.Current(); !ok {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "loading"})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// OpenAPIDocument serves the registered OpenAPI document.
func OpenAPIDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write([]byte(doc))
}

// RouterConfig holds optional configuration for the router.
type RouterConfig struct {
	Metrics        *metrics.Collector
	MetricsHandler http.Handler // defaults to promhttp.Handler()
	MetricsPath    string       // empty disables the metrics endpoint
	Reloader       Reloader
	Timeout        time.Duration
	EnableOpenAPI  bool // serve the OpenAPI document and Swagger UI
}

// NewRouter creates the HTTP router.
func NewRouter(source Source, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
	}

	r.Get("/healthz", Liveness)
	r.Get("/readyz", Readiness(source))

	if cfg.MetricsPath != "" {
		handler := cfg.MetricsHandler
		if handler == nil {
			handler = promhttp.Handler()
		}
		r.Handle(cfg.MetricsPath, handler)
	}

	r.Route("/schema", NewSchemaHandler(source, cfg.Reloader, logger).Routes)

	if cfg.EnableOpenAPI {
		r.Get("/.well-known/openapi.json", OpenAPIDocument)
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/.well-known/openapi.json"),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed on "+r.URL.Path)
	})

	return r
}

// NewMetricsMiddleware creates middleware that records request metrics by
// route pattern.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics for internal endpoints
			if isInternal(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			m.RequestsTotal.WithLabelValues(r.Method, route, statusLabel(ww.Status())).Inc()
			m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// routePattern returns the matched chi pattern, which keeps label
// cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

func isInternal(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if isInternal(r.URL.Path) {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
