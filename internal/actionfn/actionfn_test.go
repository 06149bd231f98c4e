package actionfn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/segment"
)

const flightsCSV = `ITEM_ID,SRC_CITY,DST_CITY,AIRLINE,MONTH,DURATION_DAYS,DYNAMIC_PRICE,PROMOTION,DISCOUNT_FOR_MEMBER
FL123,Manila,London,ButterflyWing Express,March,10,5999,Yes,10
FL456,Tokyo,Paris,SkyDart,March,7,4200,Yes,0
FL789,Sydney,Rome,SkyDart,June,12,5100,Yes,5
FL901,Lima,Cairo,AeroLoop,March,9,3800,Yes,0
FL902,Oslo,Quito,AeroLoop,March,9,3800,Yes,0
FL903,Bonn,Hanoi,AeroLoop,March,9,3800,Yes,0
FL904,Kiel,Accra,AeroLoop,March,9,3800,Yes,0
`

const segmentsJSONL = `{"input":{"itemId":"FL123"},"output":{"usersList":["u1","u2","u3"]}}
{"input":{"itemId":"FL456"},"output":{"usersList":["u4"]}}
`

const usersCSV = `USER_ID,MEMBER_TIER
u1,Gold
u2,Silver
u3,Gold
u4,Member
`

type staticFetcher map[string][]byte

func (s staticFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := s[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func testHandler() *Handler {
	fetcher := staticFetcher{
		"data/travel_items.csv": []byte(flightsCSV),
		"segments/batch.out":    []byte(segmentsJSONL),
		"data/travel_users.csv": []byte(usersCSV),
	}
	cat := catalog.New(fetcher, "data/travel_items.csv")
	segs := segment.NewStore(fetcher, "segments/batch.out", "data/travel_users.csv")
	return NewHandler(cat, segs)
}

func generateEvent(segmentID string) Event {
	ev := Event{
		ActionGroup: "email-campaign",
		APIPath:     "/generateEmailContent",
		HTTPMethod:  "POST",
	}
	if segmentID != "" {
		ev.Parameters = []Parameter{{Name: "segmentId", Value: segmentID}}
	}
	return ev
}

func TestGenerateEmailContext(t *testing.T) {
	h := testHandler()

	resp := h.Handle(context.Background(), generateEvent("FL123"))

	assert.Equal(t, "1.0", resp.MessageVersion)
	assert.Equal(t, 200, resp.Response.HTTPStatusCode)
	assert.Equal(t, "email-campaign", resp.Response.ActionGroup)

	body, ok := resp.Response.ResponseBody["application/json"].Body.(EmailContext)
	require.True(t, ok)

	assert.Equal(t, "FL123", body.SegmentID)
	assert.Equal(t, 3, body.UserCount)
	assert.Equal(t, map[string]int{"Gold": 2, "Silver": 1}, body.UserTierDistribution)
	assert.Equal(t, "London", body.FlightDetails.DestinationCity)
}

func TestUnknownFlightListsAlternatives(t *testing.T) {
	h := testHandler()

	resp := h.Handle(context.Background(), generateEvent("FL999"))

	assert.Equal(t, 200, resp.Response.HTTPStatusCode)
	body, ok := resp.Response.ResponseBody["application/json"].Body.(ErrorBody)
	require.True(t, ok)

	assert.Contains(t, body.Error, "FL999")
	assert.Len(t, body.AvailablePromotions, 5)
}

func TestMissingSegmentIDParameter(t *testing.T) {
	h := testHandler()

	resp := h.Handle(context.Background(), generateEvent(""))

	assert.Equal(t, 200, resp.Response.HTTPStatusCode)
	body, ok := resp.Response.ResponseBody["application/json"].Body.(ErrorBody)
	require.True(t, ok)
	assert.Equal(t, "Missing required parameter: segmentId", body.Error)
}

func TestSegmentFallsBackToFirstAvailable(t *testing.T) {
	h := testHandler()

	// FL789 exists in the catalog but has no segment; the first available
	// segment (FL123) supplies the user list.
	resp := h.Handle(context.Background(), generateEvent("FL789"))

	body, ok := resp.Response.ResponseBody["application/json"].Body.(EmailContext)
	require.True(t, ok)
	assert.Equal(t, 3, body.UserCount)
	assert.Equal(t, "Rome", body.FlightDetails.DestinationCity)
}

func TestUnrecognizedPathIs404(t *testing.T) {
	h := testHandler()

	resp := h.Handle(context.Background(), Event{ActionGroup: "email-campaign", APIPath: "/nope"})

	assert.Equal(t, 404, resp.Response.HTTPStatusCode)
	body, ok := resp.Response.ResponseBody["application/json"].Body.(ErrorBody)
	require.True(t, ok)
	assert.Contains(t, body.Error, "Unrecognized api path")
}

func TestDatasetFailureIs500(t *testing.T) {
	fetcher := staticFetcher{} // nothing resolvable
	cat := catalog.New(fetcher, "data/travel_items.csv")
	segs := segment.NewStore(fetcher, "segments/batch.out", "data/travel_users.csv")
	h := NewHandler(cat, segs)

	resp := h.Handle(context.Background(), generateEvent("FL123"))

	assert.Equal(t, 500, resp.Response.HTTPStatusCode)
	body, ok := resp.Response.ResponseBody["application/json"].Body.(ErrorBody)
	require.True(t, ok)
	assert.Contains(t, body.Error, "Internal server error")
}
