package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/segment"
)

// BuildPrompt assembles the free-text instruction for the agent from the
// resolved campaign context. Customization is operator-supplied free text
// appended as extra guidance.
func BuildPrompt(flight catalog.FlightPromotion, seg segment.UserSegment, tiers map[string]int, customization string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate an email marketing campaign for flight segment ID %s.\n", flight.ID)
	fmt.Fprintf(&b, "Flight: %s to %s with %s in %s, %d days, $%.0f.\n",
		flight.SourceCity, flight.DestinationCity, flight.Airline,
		flight.Month, flight.DurationDays, flight.Price)
	if flight.DiscountForMember > 0 {
		fmt.Fprintf(&b, "Member discount: %.0f%%.\n", flight.DiscountForMember)
	}
	fmt.Fprintf(&b, "Target segment: %d users", seg.Size())

	if len(tiers) > 0 {
		names := make([]string, 0, len(tiers))
		for tier := range tiers {
			names = append(names, tier)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, tier := range names {
			parts = append(parts, fmt.Sprintf("%d %s", tiers[tier], tier))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString(".\n")

	if customization = strings.TrimSpace(customization); customization != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", customization)
	}
	return b.String()
}
