package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/extractor"
	"github.com/wanderly/campaign-studio/internal/segment"
)

// AgentInvoker is the slice of the agent client the handlers need.
// An unconfigured invoker returns a nil response, which the extractor turns
// into the mock fallback email.
type AgentInvoker interface {
	Configured() bool
	Invoke(ctx context.Context, sessionID, inputText string) (*extractor.AgentResponse, error)
}

// PreviewSender delivers a generated campaign to an operator inbox.
type PreviewSender interface {
	SendPreview(ctx context.Context, to, subject, body string) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	catalog   *catalog.Catalog
	segments  *segment.Store
	agent     AgentInvoker
	extractor *extractor.Extractor
	fallback  *extractor.FallbackGenerator
	mailer    PreviewSender // nil when test sends are disabled
	sessions  *SessionStore
	startTime time.Time
}

// NewHandlers creates a new Handlers instance. mailer may be nil.
func NewHandlers(
	cat *catalog.Catalog,
	segments *segment.Store,
	invoker AgentInvoker,
	ext *extractor.Extractor,
	fallback *extractor.FallbackGenerator,
	mailer PreviewSender,
) *Handlers {
	return &Handlers{
		catalog:   cat,
		segments:  segments,
		agent:     invoker,
		extractor: ext,
		fallback:  fallback,
		mailer:    mailer,
		sessions:  NewSessionStore(),
		startTime: time.Now(),
	}
}

// HealthCheck returns server health status
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "healthy",
		"uptime":           time.Since(h.startTime).Round(time.Second).String(),
		"agent_configured": h.agent != nil && h.agent.Configured(),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON decodes the request body into dst, rejecting unknown garbage
// with a 400 at the caller's discretion.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
