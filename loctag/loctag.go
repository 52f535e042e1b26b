// Package loctag parses the inline <|LOC_n|> positional markers emitted by
// PaddleOCR-VL style vision models and converts them into pixel-space text
// boxes. It is a pure transformation over the raw model output: no I/O, no
// network, no shared state between calls.
package loctag

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxLoc is the normalization ceiling assumed when a response
// contains no markers at all. 972 is the empirically observed maximum of
// the model's coordinate space; it may vary across model versions, which
// is why the real ceiling is re-derived from each response when possible.
const DefaultMaxLoc = 972

// ErrMalformedMarker is returned when a marker's digit run cannot be
// parsed as a non-negative integer. A response that trips this cannot be
// trusted, so parsing aborts instead of returning partial results.
var ErrMalformedMarker = errors.New("loctag: malformed marker value")

// Point is one pixel coordinate. It marshals as a two-element JSON array
// [x, y] to stay wire-compatible with the upstream tooling.
type Point struct {
	X int
	Y int
}

// Box is a 4-point polygon localizing one text fragment, in the order the
// model emitted it (not canonicalized).
type Box [4]Point

// Record is one recognized text fragment with its pixel-space location.
type Record struct {
	Text string `json:"text"`
	Box  Box    `json:"box"`
}

// scaleFactors convert normalized marker values into pixel coordinates.
type scaleFactors struct {
	x float64
	y float64
}

// Parse splits raw model output into located text records. width and
// height are the true pixel dimensions of the image the model saw; a zero
// dimension degrades the corresponding scale factor to 1.
//
// The marker value range is derived from the response itself: the global
// maximum across all marker groups is taken as the normalization ceiling
// (the model emits one implicit fixed range per response), falling back to
// DefaultMaxLoc when the response has no markers. Records preserve the
// left-to-right order of fragments in the stream. Fragments that are not
// followed by at least one marker cannot be localized and are dropped, as
// are fragments that are empty after trimming.
//
// The only error condition is ErrMalformedMarker; every other degenerate
// input shape degrades gracefully (see buildBox).
func Parse(raw string, width, height int) ([]Record, error) {
	segs, err := scanSegments(raw)
	if err != nil {
		return nil, err
	}

	scale := deriveScale(segs, width, height)

	records := make([]Record, 0, len(segs))
	for _, seg := range segs {
		text := strings.TrimSpace(seg.text)
		if text == "" {
			continue
		}
		records = append(records, Record{
			Text: text,
			Box:  buildBox(seg.locs, scale),
		})
	}
	return records, nil
}

// deriveScale computes per-axis scale factors from the global maximum
// marker value. This is a full pre-scan over all groups, which is why
// scanSegments materializes the whole response before any box is built.
func deriveScale(segs []segment, width, height int) scaleFactors {
	maxLoc := 0
	seen := false
	for _, seg := range segs {
		for _, v := range seg.locs {
			seen = true
			if v > maxLoc {
				maxLoc = v
			}
		}
	}
	if !seen {
		maxLoc = DefaultMaxLoc
	}

	s := scaleFactors{x: 1, y: 1}
	if maxLoc > 0 {
		if width > 0 {
			s.x = float64(width) / float64(maxLoc)
		}
		if height > 0 {
			s.y = float64(height) / float64(maxLoc)
		}
	}
	return s
}

// buildBox turns one marker group into a 4-point pixel polygon.
//
//   - 8+ values: the first 8 are four (x, y) points in document order.
//   - 4..7 values: the first 4 are an axis-aligned bounding box
//     (x1, y1, x2, y2); the other two corners are synthesized.
//   - fewer than 4: not enough data for any geometry; an all-zero polygon
//     is emitted so one bad detection never aborts the response.
//
// Extra values past the consumed prefix are ignored. Pixel coordinates
// are truncated toward zero in both branches.
func buildBox(locs []int, scale scaleFactors) Box {
	switch {
	case len(locs) >= 8:
		var b Box
		for i := 0; i < 4; i++ {
			b[i] = Point{
				X: int(float64(locs[2*i]) * scale.x),
				Y: int(float64(locs[2*i+1]) * scale.y),
			}
		}
		return b
	case len(locs) >= 4:
		x1 := int(float64(locs[0]) * scale.x)
		y1 := int(float64(locs[1]) * scale.y)
		x2 := int(float64(locs[2]) * scale.x)
		y2 := int(float64(locs[3]) * scale.y)
		return Box{
			{X: x1, Y: y1},
			{X: x2, Y: y1},
			{X: x2, Y: y2},
			{X: x1, Y: y2},
		}
	default:
		return Box{}
	}
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, "[%d,%d]", p.X, p.Y), nil
}

// UnmarshalJSON decodes a [x, y] pair.
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]int
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("loctag: decoding point: %w", err)
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}
