package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderly/campaign-studio/internal/catalog"
)

var londonFlight = catalog.FlightPromotion{
	ID:              "FL123",
	SourceCity:      "Manila",
	DestinationCity: "London",
	Airline:         "ButterflyWing Express",
	Month:           "March",
	DurationDays:    10,
	Price:           5999,
	IsPromoted:      true,
}

func TestFallbackRenderIsDeterministic(t *testing.T) {
	gen := NewFallbackGenerator()

	first := gen.Render(londonFlight)
	second := gen.Render(londonFlight)
	assert.Equal(t, first, second)
}

func TestFallbackRenderContainsFlightFacts(t *testing.T) {
	gen := NewFallbackGenerator()

	out := gen.Render(londonFlight)

	assert.Contains(t, out, "Subject: Exclusive Deal: Fly from Manila to London This March!")
	assert.Contains(t, out, "💰 Special Price: $5999")
	assert.Contains(t, out, "⭐ Duration: 10 days")
	assert.Contains(t, out, "🛫 Airline: ButterflyWing Express")
	assert.Contains(t, out, "promo code LONDON23")
	assert.Contains(t, out, "Best regards,\nThe Wanderly Team")
}

func TestFallbackRenderFeedsExtractorCleanly(t *testing.T) {
	gen := NewFallbackGenerator()
	x := New(nil)

	email := x.Extract(nil, "prompt", gen.Render(londonFlight))

	require.True(t, email.Mock)
	assert.Equal(t, "Exclusive Deal: Fly from Manila to London This March!", email.Subject)
	assert.NotContains(t, email.Body, "Subject:")
}

func TestPromoCodeStripsSpaces(t *testing.T) {
	flight := londonFlight
	flight.DestinationCity = "New York"
	assert.Equal(t, "NEWYORK23", promoCode(flight))
}

func TestCustomTemplate(t *testing.T) {
	gen := NewFallbackGeneratorWithTemplate("Fly {{ source }} to {{ destination }}!")
	assert.Equal(t, "Fly Manila to London!", gen.Render(londonFlight))
}
