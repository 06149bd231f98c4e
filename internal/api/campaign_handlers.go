package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wanderly/campaign-studio/internal/agent"
	"github.com/wanderly/campaign-studio/internal/extractor"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// GenerateRequest asks for an email campaign for the session's selection.
// SegmentID is optional when a segment was already analyzed in this session.
type GenerateRequest struct {
	SegmentID     string `json:"segmentId"`
	Customization string `json:"customization"`
}

// CampaignResponse carries the generated email back to the dashboard.
type CampaignResponse struct {
	SessionID   string          `json:"sessionId"`
	SegmentID   string          `json:"segmentId"`
	Subject     string          `json:"subject"`
	Body        string          `json:"body"`
	TokenCounts extractor.Usage `json:"tokenCounts"`
	Mock        bool            `json:"mock"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// GenerateCampaign produces an email for the selected segment. The response
// is always a usable email: live agent output when available, a recovered
// email when the stream was noisy, and the deterministic fallback otherwise.
//
//	POST /api/campaigns/generate
func (h *Handlers) GenerateCampaign(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := h.sessionID(r)
	sc, ok := h.sessions.Get(sessionID)
	if !ok || (req.SegmentID != "" && req.SegmentID != sc.Flight.ID) {
		respondError(w, http.StatusConflict, "segment not analyzed yet; call /api/segments/analyze first")
		return
	}

	prompt := agent.BuildPrompt(sc.Flight, sc.Segment, sc.Tiers, req.Customization)
	fallback := h.fallback.Render(sc.Flight)

	var raw *extractor.AgentResponse
	if h.agent != nil && h.agent.Configured() {
		var err error
		raw, err = h.agent.Invoke(r.Context(), sessionID, prompt)
		if err != nil {
			// A failed invocation degrades to the fallback email rather than
			// surfacing an error to the operator.
			logger.Error("agent invocation failed", "segment_id", sc.Flight.ID, "error", err)
			raw = nil
		}
	}

	email := h.extractor.Extract(raw, prompt, fallback)

	sc.Email = &email
	sc.GeneratedAt = time.Now().UTC()
	h.sessions.Put(sessionID, sc)

	w.Header().Set("X-Session-ID", sessionID)
	respondJSON(w, http.StatusOK, CampaignResponse{
		SessionID:   sessionID,
		SegmentID:   sc.Flight.ID,
		Subject:     email.Subject,
		Body:        email.Body,
		TokenCounts: email.TokenCounts,
		Mock:        email.Mock,
		GeneratedAt: sc.GeneratedAt,
	})
}

// LastCampaign returns the session's most recently generated email.
//
//	GET /api/campaigns/last
func (h *Handlers) LastCampaign(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(r)
	sc, ok := h.sessions.Get(sessionID)
	if !ok || sc.Email == nil {
		respondError(w, http.StatusNotFound, "no campaign generated for this session")
		return
	}

	respondJSON(w, http.StatusOK, CampaignResponse{
		SessionID:   sessionID,
		SegmentID:   sc.Flight.ID,
		Subject:     sc.Email.Subject,
		Body:        sc.Email.Body,
		TokenCounts: sc.Email.TokenCounts,
		Mock:        sc.Email.Mock,
		GeneratedAt: sc.GeneratedAt,
	})
}

// DownloadCampaign streams the generated email as a plain-text attachment.
//
//	GET /api/campaigns/download
func (h *Handlers) DownloadCampaign(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.sessions.Get(h.sessionID(r))
	if !ok || sc.Email == nil {
		respondError(w, http.StatusNotFound, "no campaign generated for this session")
		return
	}

	filename := fmt.Sprintf("campaign_%s.txt", sc.Flight.ID)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sc.Email.String()))
}

// TestSendRequest addresses a test delivery of the generated campaign.
type TestSendRequest struct {
	To string `json:"to"`
}

// TestSendCampaign emails the generated campaign to an operator address.
//
//	POST /api/campaigns/test-send
func (h *Handlers) TestSendCampaign(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		respondError(w, http.StatusServiceUnavailable, "test sending is not configured")
		return
	}

	var req TestSendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.To = strings.TrimSpace(req.To)
	if req.To == "" || !strings.Contains(req.To, "@") {
		respondError(w, http.StatusBadRequest, "a valid recipient address is required")
		return
	}

	sc, ok := h.sessions.Get(h.sessionID(r))
	if !ok || sc.Email == nil {
		respondError(w, http.StatusNotFound, "no campaign generated for this session")
		return
	}

	if err := h.mailer.SendPreview(r.Context(), req.To, sc.Email.Subject, sc.Email.Body); err != nil {
		logger.Error("test send failed", "segment_id", sc.Flight.ID, "error", err)
		respondError(w, http.StatusBadGateway, "failed to send test email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sent": true,
		"to":   req.To,
	})
}
