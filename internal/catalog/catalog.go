// Package catalog resolves flight promotions from the travel items dataset.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/wanderly/campaign-studio/internal/objectstore"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// FlightPromotion is a read-only snapshot of one travel item row.
type FlightPromotion struct {
	ID                string  `json:"itemId"`
	SourceCity        string  `json:"source"`
	DestinationCity   string  `json:"destination"`
	Airline           string  `json:"airline"`
	Month             string  `json:"month"`
	DurationDays      int     `json:"duration"`
	Price             float64 `json:"price"`
	IsPromoted        bool    `json:"promotion"`
	DiscountForMember float64 `json:"discountForMembers"`
}

// Catalog is a lookup over the flight promotion table, fetched whole per request.
type Catalog struct {
	fetcher objectstore.Fetcher
	key     string
}

// New creates a Catalog reading the travel items CSV at key.
func New(fetcher objectstore.Fetcher, key string) *Catalog {
	return &Catalog{fetcher: fetcher, key: key}
}

// Load fetches and parses the full flight table.
func (c *Catalog) Load(ctx context.Context) ([]FlightPromotion, error) {
	data, err := c.fetcher.Fetch(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("fetching flight catalog: %w", err)
	}
	return parseFlights(data)
}

// Lookup resolves a flight id to its promotion record.
func (c *Catalog) Lookup(ctx context.Context, id string) (FlightPromotion, bool, error) {
	flights, err := c.Load(ctx)
	if err != nil {
		return FlightPromotion{}, false, err
	}
	for _, f := range flights {
		if f.ID == id {
			return f, true, nil
		}
	}
	return FlightPromotion{}, false, nil
}

// Promoted returns all flights flagged as promotions.
func (c *Catalog) Promoted(ctx context.Context) ([]FlightPromotion, error) {
	flights, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	var promos []FlightPromotion
	for _, f := range flights {
		if f.IsPromoted {
			promos = append(promos, f)
		}
	}
	return promos, nil
}

// PromotedInMonth returns promoted flights for a given month, falling back to
// all promotions when the month has none. Segmentation data historically only
// covers March, so the dashboard shows other months as reference.
func (c *Catalog) PromotedInMonth(ctx context.Context, month string) ([]FlightPromotion, bool, error) {
	promos, err := c.Promoted(ctx)
	if err != nil {
		return nil, false, err
	}
	var matched []FlightPromotion
	for _, f := range promos {
		if strings.EqualFold(f.Month, month) {
			matched = append(matched, f)
		}
	}
	if len(matched) > 0 {
		return matched, true, nil
	}
	return promos, false, nil
}

// SamplePromotions returns at most n promoted flights, used to suggest
// alternatives when a requested id cannot be resolved.
func (c *Catalog) SamplePromotions(ctx context.Context, n int) ([]FlightPromotion, error) {
	promos, err := c.Promoted(ctx)
	if err != nil {
		return nil, err
	}
	if len(promos) > n {
		promos = promos[:n]
	}
	return promos, nil
}

// parseFlights decodes the travel items CSV. Column order follows the header
// row; rows with unparseable numeric fields keep zero values rather than
// failing the whole load.
func parseFlights(data []byte) ([]FlightPromotion, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing flight CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	flights := make([]FlightPromotion, 0, len(records)-1)
	for _, row := range records[1:] {
		f := FlightPromotion{
			ID:              field(row, "ITEM_ID"),
			SourceCity:      field(row, "SRC_CITY"),
			DestinationCity: field(row, "DST_CITY"),
			Airline:         field(row, "AIRLINE"),
			Month:           field(row, "MONTH"),
			IsPromoted:      strings.EqualFold(field(row, "PROMOTION"), "Yes"),
		}
		if v, err := strconv.Atoi(field(row, "DURATION_DAYS")); err == nil {
			f.DurationDays = v
		}
		if v, err := strconv.ParseFloat(field(row, "DYNAMIC_PRICE"), 64); err == nil {
			f.Price = v
		}
		if v, err := strconv.ParseFloat(field(row, "DISCOUNT_FOR_MEMBER"), 64); err == nil {
			f.DiscountForMember = v
		}
		if f.ID == "" {
			logger.Warn("skipping flight row without ITEM_ID")
			continue
		}
		flights = append(flights, f)
	}
	return flights, nil
}
