package api

import (
	"net/http"

	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// defaultPromotionMonth matches the month the demo datasets are seeded for.
const defaultPromotionMonth = "March"

// PromotionList is the promotion browsing response.
type PromotionList struct {
	Month      string                    `json:"month"`
	ExactMonth bool                      `json:"exactMonth"`
	Promotions []catalog.FlightPromotion `json:"promotions"`
}

// ListPromotions returns the promoted flights for a month. When no promotion
// runs in the requested month, all current promotions are returned with
// exactMonth=false so the dashboard can say so instead of showing an empty
// page.
//
//	GET /api/promotions?month=March
func (h *Handlers) ListPromotions(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = defaultPromotionMonth
	}

	promos, exact, err := h.catalog.PromotedInMonth(r.Context(), month)
	if err != nil {
		logger.Error("failed to load promotions", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load promotions")
		return
	}

	respondJSON(w, http.StatusOK, PromotionList{
		Month:      month,
		ExactMonth: exact,
		Promotions: promos,
	})
}
