package pathfile_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/pathfile"
)

func TestParseManualEntry(t *testing.T) {
	tests := []struct {
		name         string
		lat, lon, ts string
		want         domain.Waypoint
		wantErr      bool
	}{
		{"valid", "18.5204", "73.8567", "1609459200", domain.Waypoint{Latitude: 18.5204, Longitude: 73.8567, Timestamp: 1609459200}, false},
		{"whitespace", " 1 ", " -2 ", " 3 ", domain.Waypoint{Latitude: 1, Longitude: -2, Timestamp: 3}, false},
		{"empty latitude", "", "73.8567", "1", domain.Waypoint{}, true},
		{"text longitude", "18", "east", "1", domain.Waypoint{}, true},
		{"nan latitude", "NaN", "1", "1", domain.Waypoint{}, true},
		{"infinite longitude", "1", "Inf", "1", domain.Waypoint{}, true},
		{"fractional timestamp", "1", "2", "3.5", domain.Waypoint{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pathfile.ParseManualEntry(tt.lat, tt.lon, tt.ts)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidManualEntry) {
					t.Fatalf("expected ErrInvalidManualEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestManualEntry_NumbersAndStrings(t *testing.T) {
	var m pathfile.ManualEntry
	if err := json.Unmarshal([]byte(`{"latitude":"18.5","longitude":73.8,"timestamp":"42"}`), &m); err != nil {
		t.Fatal(err)
	}
	w, err := m.Waypoint()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Latitude != 18.5 || w.Longitude != 73.8 || w.Timestamp != 42 {
		t.Errorf("unexpected waypoint %+v", w)
	}
}

func TestManualEntry_MissingField(t *testing.T) {
	var m pathfile.ManualEntry
	if err := json.Unmarshal([]byte(`{"latitude":1,"longitude":2}`), &m); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Waypoint(); !errors.Is(err, domain.ErrInvalidManualEntry) {
		t.Fatalf("expected ErrInvalidManualEntry, got %v", err)
	}
}
