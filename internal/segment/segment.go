// Package segment resolves pre-computed user segments and membership-tier
// breakdowns for flight promotions.
package segment

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wanderly/campaign-studio/internal/objectstore"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// UserSegment is the targeted user list for one flight promotion.
type UserSegment struct {
	FlightID string   `json:"flightId"`
	UserIDs  []string `json:"userIds"`
}

// Size returns the number of users in the segment.
func (s UserSegment) Size() int { return len(s.UserIDs) }

// Sample returns up to n user ids for display.
func (s UserSegment) Sample(n int) []string {
	if len(s.UserIDs) <= n {
		return s.UserIDs
	}
	return s.UserIDs[:n]
}

// segmentLine is one JSON-Lines record of the batch segmentation output.
type segmentLine struct {
	Input struct {
		ItemID string `json:"itemId"`
	} `json:"input"`
	Output struct {
		UsersList []string `json:"usersList"`
	} `json:"output"`
}

// Store looks up segments and tier distributions from the batch
// segmentation output and the user directory.
type Store struct {
	fetcher     objectstore.Fetcher
	segmentsKey string
	usersKey    string
}

// NewStore creates a segment store over the given object keys.
func NewStore(fetcher objectstore.Fetcher, segmentsKey, usersKey string) *Store {
	return &Store{fetcher: fetcher, segmentsKey: segmentsKey, usersKey: usersKey}
}

// All returns every segment in the batch output, in file order.
func (s *Store) All(ctx context.Context) ([]UserSegment, error) {
	data, err := s.fetcher.Fetch(ctx, s.segmentsKey)
	if err != nil {
		return nil, fmt.Errorf("fetching segments: %w", err)
	}

	var segments []UserSegment
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec segmentLine
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("skipping malformed segment line", "error", err)
			continue
		}
		segments = append(segments, UserSegment{
			FlightID: rec.Input.ItemID,
			UserIDs:  rec.Output.UsersList,
		})
	}
	return segments, nil
}

// Lookup resolves a flight id to its segment by exact itemId match.
func (s *Store) Lookup(ctx context.Context, flightID string) (UserSegment, bool, error) {
	segments, err := s.All(ctx)
	if err != nil {
		return UserSegment{}, false, err
	}
	for _, seg := range segments {
		if seg.FlightID == flightID {
			return seg, true, nil
		}
	}
	return UserSegment{}, false, nil
}

// FirstAvailable returns the first non-empty segment in the batch output.
// The action function uses it when no segment matches the requested id.
func (s *Store) FirstAvailable(ctx context.Context) (UserSegment, bool, error) {
	segments, err := s.All(ctx)
	if err != nil {
		return UserSegment{}, false, err
	}
	for _, seg := range segments {
		if len(seg.UserIDs) > 0 {
			return seg, true, nil
		}
	}
	return UserSegment{}, false, nil
}

// TierDistribution counts segment members by membership tier using the user
// directory. Users missing from the directory are not counted.
func (s *Store) TierDistribution(ctx context.Context, userIDs []string) (map[string]int, error) {
	if len(userIDs) == 0 {
		return map[string]int{}, nil
	}

	data, err := s.fetcher.Fetch(ctx, s.usersKey)
	if err != nil {
		return nil, fmt.Errorf("fetching user directory: %w", err)
	}

	tiers, err := parseUserTiers(data)
	if err != nil {
		return nil, err
	}

	// Treated as a set for counting; duplicate ids count once.
	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	dist := make(map[string]int)
	for id := range wanted {
		if tier, ok := tiers[id]; ok {
			dist[tier]++
		}
	}
	return dist, nil
}

// parseUserTiers decodes the user directory CSV into id -> tier.
func parseUserTiers(data []byte) (map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing user CSV: %w", err)
	}
	if len(records) == 0 {
		return map[string]string{}, nil
	}

	idCol, tierCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "USER_ID":
			idCol = i
		case "MEMBER_TIER":
			tierCol = i
		}
	}
	if idCol < 0 || tierCol < 0 {
		return nil, fmt.Errorf("user CSV missing USER_ID or MEMBER_TIER column")
	}

	tiers := make(map[string]string, len(records)-1)
	for _, row := range records[1:] {
		if idCol >= len(row) || tierCol >= len(row) {
			continue
		}
		tiers[strings.TrimSpace(row[idCol])] = strings.TrimSpace(row[tierCol])
	}
	return tiers, nil
}
