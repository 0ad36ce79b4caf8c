// Package pathfile reads and writes path files: the JSON upload format,
// GPX tracks and GeoJSON exports.
package pathfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// Format is a supported path file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatGPX  Format = "gpx"
)

var requiredFields = []string{"latitude", "longitude", "timestamp"}

// ParseJSON parses the upload format: a JSON array of objects, each carrying
// numeric latitude, longitude and timestamp. A single bad entry rejects the
// whole file. Fractional timestamps are truncated to whole seconds.
func ParseJSON(data []byte) (domain.Path, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedUpload, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", domain.ErrMalformedUpload)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after array", domain.ErrMalformedUpload)
	}

	path := make(domain.Path, 0, len(raw))
	for i, item := range raw {
		w, err := parseEntry(item)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", domain.ErrMalformedUpload, i, err)
		}
		path = append(path, w)
	}
	return path, nil
}

func parseEntry(item json.RawMessage) (domain.Waypoint, error) {
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return domain.Waypoint{}, fmt.Errorf("not an object")
	}

	vals := make(map[string]json.Number, len(requiredFields))
	for _, key := range requiredFields {
		n, ok := obj[key].(json.Number)
		if !ok {
			return domain.Waypoint{}, fmt.Errorf("%s must be a number", key)
		}
		vals[key] = n
	}

	lat, err := finite("latitude", vals["latitude"])
	if err != nil {
		return domain.Waypoint{}, err
	}
	lon, err := finite("longitude", vals["longitude"])
	if err != nil {
		return domain.Waypoint{}, err
	}
	ts, err := timestamp(vals["timestamp"])
	if err != nil {
		return domain.Waypoint{}, err
	}
	return domain.Waypoint{Latitude: lat, Longitude: lon, Timestamp: ts}, nil
}

func finite(field string, n json.Number) (float64, error) {
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s out of range", field)
	}
	return f, nil
}

// timestamp reads integers exactly. Fractional values are truncated toward
// zero and must fit in an int64.
func timestamp(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("timestamp %s out of range", n)
	}
	return int64(f), nil
}

// DetectFormat picks a format from the file name, falling back to sniffing
// the content.
func DetectFormat(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".gpx", ".xml":
		return FormatGPX, nil
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		return FormatJSON, nil
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatGPX, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedImport, name)
}

// Parse decodes data according to format.
func Parse(format Format, data []byte) (domain.Path, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatGPX:
		return ParseGPX(data)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImport, format)
	}
}
