// Package actionfn implements the agent action-group function that supplies
// the marketing agent with structured campaign context: flight attributes,
// segment size and membership-tier breakdown.
package actionfn

import (
	"context"
	"fmt"

	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
	"github.com/wanderly/campaign-studio/internal/segment"
)

// messageVersion is fixed by the action-group invocation contract.
const messageVersion = "1.0"

// maxSuggestedPromotions caps the alternatives listed for an unknown id.
const maxSuggestedPromotions = 5

// Parameter is one named value of the invocation event.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Event is the invocation envelope delivered by the agent runtime.
type Event struct {
	ActionGroup string      `json:"actionGroup"`
	APIPath     string      `json:"apiPath"`
	HTTPMethod  string      `json:"httpMethod"`
	Parameters  []Parameter `json:"parameters"`
}

// Param returns the named parameter value, or def when absent.
func (e Event) Param(name, def string) string {
	for _, p := range e.Parameters {
		if p.Name == name {
			return p.Value
		}
	}
	return def
}

// ContentBody wraps a JSON response payload.
type ContentBody struct {
	Body interface{} `json:"body"`
}

// ActionResponse mirrors the request envelope with an HTTP-style status.
type ActionResponse struct {
	ActionGroup    string                 `json:"actionGroup"`
	APIPath        string                 `json:"apiPath"`
	HTTPMethod     string                 `json:"httpMethod"`
	HTTPStatusCode int                    `json:"httpStatusCode"`
	ResponseBody   map[string]ContentBody `json:"responseBody"`
}

// Response is the full function result.
type Response struct {
	MessageVersion string         `json:"messageVersion"`
	Response       ActionResponse `json:"response"`
}

// EmailContext is the structured context handed back to the agent for email
// generation.
type EmailContext struct {
	SegmentID            string                  `json:"segmentId"`
	UserCount            int                     `json:"userCount"`
	UserTierDistribution map[string]int          `json:"userTierDistribution"`
	FlightDetails        catalog.FlightPromotion `json:"flightDetails"`
}

// ErrorBody is the error payload, optionally annotated with alternatives.
type ErrorBody struct {
	Error               string                    `json:"error"`
	AvailablePromotions []catalog.FlightPromotion `json:"availablePromotions,omitempty"`
}

// Handler dispatches action-group invocations.
type Handler struct {
	catalog  *catalog.Catalog
	segments *segment.Store
}

// NewHandler creates an action-group handler over the campaign datasets.
func NewHandler(cat *catalog.Catalog, segments *segment.Store) *Handler {
	return &Handler{catalog: cat, segments: segments}
}

// Handle dispatches solely on an exact apiPath match. Every failure mode maps
// to a response envelope; Handle itself never returns an error.
func (h *Handler) Handle(ctx context.Context, event Event) Response {
	logger.Info("processing action request",
		"action_group", event.ActionGroup, "api_path", event.APIPath)

	var body interface{}
	code := 200

	switch event.APIPath {
	case "/generateEmailContent":
		result, err := h.generateEmailContent(ctx, event)
		if err != nil {
			logger.Error("action request failed", "api_path", event.APIPath, "error", err)
			code = 500
			body = ErrorBody{Error: fmt.Sprintf("Internal server error: %v", err)}
		} else {
			body = result
		}
	default:
		code = 404
		body = ErrorBody{Error: fmt.Sprintf("Unrecognized api path: %s::%s", event.ActionGroup, event.APIPath)}
	}

	return Response{
		MessageVersion: messageVersion,
		Response: ActionResponse{
			ActionGroup:    event.ActionGroup,
			APIPath:        event.APIPath,
			HTTPMethod:     event.HTTPMethod,
			HTTPStatusCode: code,
			ResponseBody: map[string]ContentBody{
				"application/json": {Body: body},
			},
		},
	}
}

// generateEmailContent assembles the campaign context for one segment id.
// Lookup misses produce an error body (not an error return): the agent is
// expected to relay them conversationally, so they ride a 200 envelope.
func (h *Handler) generateEmailContent(ctx context.Context, event Event) (interface{}, error) {
	segmentID := event.Param("segmentId", "")
	if segmentID == "" {
		logger.Warn("no segmentId provided in request")
		return ErrorBody{Error: "Missing required parameter: segmentId"}, nil
	}

	userIDs, err := h.resolveUsers(ctx, segmentID)
	if err != nil {
		return nil, err
	}

	flight, found, err := h.catalog.Lookup(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	if !found {
		sample, err := h.catalog.SamplePromotions(ctx, maxSuggestedPromotions)
		if err != nil {
			return nil, err
		}
		return ErrorBody{
			Error:               fmt.Sprintf("No flight details found for segment ID: %s", segmentID),
			AvailablePromotions: sample,
		}, nil
	}

	tiers, err := h.segments.TierDistribution(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	return EmailContext{
		SegmentID:            segmentID,
		UserCount:            len(userIDs),
		UserTierDistribution: tiers,
		FlightDetails:        flight,
	}, nil
}

// resolveUsers returns the segment's user list, falling back to the first
// available segment when the id has no exact match.
func (h *Handler) resolveUsers(ctx context.Context, segmentID string) ([]string, error) {
	seg, found, err := h.segments.Lookup(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	if found {
		return seg.UserIDs, nil
	}

	first, ok, err := h.segments.FirstAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		logger.Info("using first available segment as fallback", "segment_id", segmentID)
		return first.UserIDs, nil
	}

	logger.Warn("no valid segments found", "segment_id", segmentID)
	return nil, nil
}
