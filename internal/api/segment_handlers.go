package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wanderly/campaign-studio/internal/agent"
	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// maxSampledUserIDs bounds the preview of a segment's audience.
const maxSampledUserIDs = 10

// AnalyzeRequest selects a promotion segment for the session.
type AnalyzeRequest struct {
	SegmentID string `json:"segmentId"`
}

// SegmentAnalysis is the analyze response: the flight, audience size and
// membership-tier breakdown for the selected segment.
type SegmentAnalysis struct {
	SessionID            string                  `json:"sessionId"`
	SegmentID            string                  `json:"segmentId"`
	FlightDetails        catalog.FlightPromotion `json:"flightDetails"`
	UserCount            int                     `json:"userCount"`
	UserTierDistribution map[string]int          `json:"userTierDistribution"`
	SampleUserIDs        []string                `json:"sampleUserIds"`
}

// AnalyzeSegment resolves a flight id to its audience and stores the result
// as the session's selection, replacing any previous one. Unknown ids get a
// 404 carrying alternative promotions the operator can pick instead.
//
//	POST /api/segments/analyze
func (h *Handlers) AnalyzeSegment(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.SegmentID = strings.TrimSpace(req.SegmentID)
	if req.SegmentID == "" {
		respondError(w, http.StatusBadRequest, "segmentId is required")
		return
	}

	ctx := r.Context()

	flight, found, err := h.catalog.Lookup(ctx, req.SegmentID)
	if err != nil {
		logger.Error("catalog lookup failed", "segment_id", req.SegmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load flight catalog")
		return
	}
	if !found {
		alternatives, err := h.catalog.SamplePromotions(ctx, 5)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load flight catalog")
			return
		}
		respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":               fmt.Sprintf("No flight details found for segment ID: %s", req.SegmentID),
			"availablePromotions": alternatives,
		})
		return
	}

	seg, found, err := h.segments.Lookup(ctx, req.SegmentID)
	if err != nil {
		logger.Error("segment lookup failed", "segment_id", req.SegmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load segments")
		return
	}
	if !found {
		// The flight is real but nobody was batched into its segment.
		seg, _, err = h.segments.FirstAvailable(ctx)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load segments")
			return
		}
		logger.Info("segment empty, using first available audience", "segment_id", req.SegmentID)
	}

	tiers, err := h.segments.TierDistribution(ctx, seg.UserIDs)
	if err != nil {
		logger.Error("tier distribution failed", "segment_id", req.SegmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load user tiers")
		return
	}

	sessionID := h.sessionID(r)
	h.sessions.Put(sessionID, SessionContext{
		Flight:  flight,
		Segment: seg,
		Tiers:   tiers,
	})

	w.Header().Set("X-Session-ID", sessionID)
	respondJSON(w, http.StatusOK, SegmentAnalysis{
		SessionID:            sessionID,
		SegmentID:            req.SegmentID,
		FlightDetails:        flight,
		UserCount:            seg.Size(),
		UserTierDistribution: tiers,
		SampleUserIDs:        seg.Sample(maxSampledUserIDs),
	})
}

// DownloadSegment streams the selected segment's audience as a USER_ID CSV.
//
//	GET /api/segments/download
func (h *Handlers) DownloadSegment(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.sessions.Get(h.sessionID(r))
	if !ok {
		respondError(w, http.StatusNotFound, "no segment selected for this session")
		return
	}

	var b strings.Builder
	b.WriteString("USER_ID\n")
	for _, id := range sc.Segment.UserIDs {
		b.WriteString(id)
		b.WriteByte('\n')
	}

	filename := fmt.Sprintf("segment_%s_users.csv", sc.Flight.ID)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(b.String()))
}

// sessionID returns the caller's session id, minting one when absent so a
// fresh dashboard tab works without a handshake.
func (h *Handlers) sessionID(r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	return agent.NewSessionID()
}
