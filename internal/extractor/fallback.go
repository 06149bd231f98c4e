package extractor

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// defaultFallbackTemplate renders the deterministic mock email used whenever
// live extraction is impossible or the agent is not configured.
const defaultFallbackTemplate = `Subject: Exclusive Deal: Fly from {{ source }} to {{ destination }} This {{ month }}!

Dear Valued Wanderly Traveler,

We're excited to offer you an exclusive opportunity to explore {{ destination }} this {{ month }}!

✈️ {{ source }} to {{ destination }}
🗓️ Travel Period: {{ month }}
💰 Special Price: ${{ price }}
⭐ Duration: {{ duration }} days
🛫 Airline: {{ airline }}

Book now at https://demobooking.demo.co and use promo code {{ promo_code }} to secure this special offer!

Best regards,
The Wanderly Team`

// FallbackGenerator renders mock campaign emails from a flight promotion.
// One generator replaces the per-screen mock blocks the prototypes carried.
type FallbackGenerator struct {
	engine   *liquid.Engine
	template string
}

// NewFallbackGenerator creates a generator using the default template.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{engine: liquid.NewEngine(), template: defaultFallbackTemplate}
}

// NewFallbackGeneratorWithTemplate creates a generator with a custom Liquid
// template. The template receives source, destination, airline, month, price,
// duration and promo_code bindings.
func NewFallbackGeneratorWithTemplate(template string) *FallbackGenerator {
	return &FallbackGenerator{engine: liquid.NewEngine(), template: template}
}

// Render produces the deterministic mock email for a flight. Template errors
// degrade to a minimal plain-text email rather than failing the request.
func (g *FallbackGenerator) Render(flight catalog.FlightPromotion) string {
	bindings := map[string]interface{}{
		"source":      flight.SourceCity,
		"destination": flight.DestinationCity,
		"airline":     flight.Airline,
		"month":       flight.Month,
		"price":       fmt.Sprintf("%.0f", flight.Price),
		"duration":    flight.DurationDays,
		"promo_code":  promoCode(flight),
	}

	out, err := g.engine.ParseAndRenderString(g.template, bindings)
	if err != nil {
		logger.Error("fallback template render failed", "flight_id", flight.ID, "error", err)
		return fmt.Sprintf("Subject: Special Offer: %s to %s\n\nBook your %s flight with %s today at https://demobooking.demo.co!\n\nBest regards,\nThe Wanderly Team",
			flight.SourceCity, flight.DestinationCity, flight.Month, flight.Airline)
	}
	return out
}

// promoCode derives the deterministic promo code for a flight, e.g. LONDON23.
func promoCode(flight catalog.FlightPromotion) string {
	city := strings.ToUpper(strings.ReplaceAll(flight.DestinationCity, " ", ""))
	return city + "23"
}
