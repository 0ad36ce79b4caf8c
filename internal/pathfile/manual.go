package pathfile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// ManualEntry is a waypoint typed in by hand. Each field may arrive as a JSON
// number or as a string.
type ManualEntry struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// Waypoint validates the entry and converts it.
func (m ManualEntry) Waypoint() (domain.Waypoint, error) {
	return ParseManualEntry(rawText(m.Latitude), rawText(m.Longitude), rawText(m.Timestamp))
}

// ParseManualEntry parses form fields into a waypoint. Latitude and longitude
// must be finite decimals; the timestamp must be an integer.
func ParseManualEntry(lat, lon, ts string) (domain.Waypoint, error) {
	la, err := parseFinite("latitude", lat)
	if err != nil {
		return domain.Waypoint{}, err
	}
	lo, err := parseFinite("longitude", lon)
	if err != nil {
		return domain.Waypoint{}, err
	}
	t, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("%w: timestamp %q is not an integer", domain.ErrInvalidManualEntry, ts)
	}
	return domain.Waypoint{Latitude: la, Longitude: lo, Timestamp: t}, nil
}

func parseFinite(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s %q is not a number", domain.ErrInvalidManualEntry, field, s)
	}
	return f, nil
}

// rawText unwraps a JSON string or returns a bare JSON number as text.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
