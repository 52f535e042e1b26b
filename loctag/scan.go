package loctag

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker token grammar, matched literally and case-sensitively:
// "<|LOC_" + one or more ASCII decimal digits + "|>".
const (
	markerOpen  = "<|LOC_"
	markerClose = "|>"
)

// segment is one (text, marker group) pair from the stream: the text that
// precedes a maximal run of consecutive marker tokens, and the numeric
// payloads of that run. Trailing text with no following markers never
// forms a segment.
type segment struct {
	text string
	locs []int
}

// scanSegments tokenizes the raw stream into segments. The scanner is an
// explicit state machine rather than a regex: at each position it either
// recognizes a complete marker token or treats the byte as plain text.
// Anything that merely resembles a marker (unterminated "<|LOC_", empty
// digit run, unknown tag name) is kept as text.
func scanSegments(raw string) ([]segment, error) {
	var (
		segs []segment
		text strings.Builder
		locs []int
	)

	flush := func() {
		if len(locs) > 0 {
			segs = append(segs, segment{text: text.String(), locs: locs})
			text.Reset()
			locs = nil
		}
	}

	i := 0
	for i < len(raw) {
		val, width, ok, err := matchMarker(raw[i:])
		if err != nil {
			return nil, err
		}
		if !ok {
			// A text byte after one or more markers ends the run.
			flush()
			text.WriteByte(raw[i])
			i++
			continue
		}
		locs = append(locs, val)
		i += width
	}
	flush()
	return segs, nil
}

// matchMarker reports whether s begins with a complete marker token,
// returning its value and byte width. A syntactically complete token
// whose digits overflow int is the one fatal condition.
func matchMarker(s string) (val, width int, ok bool, err error) {
	if !strings.HasPrefix(s, markerOpen) {
		return 0, 0, false, nil
	}
	rest := s[len(markerOpen):]

	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n == 0 || !strings.HasPrefix(rest[n:], markerClose) {
		return 0, 0, false, nil
	}

	digits := rest[:n]
	val, convErr := strconv.Atoi(digits)
	if convErr != nil || val < 0 {
		return 0, 0, false, fmt.Errorf("%w: %q: %v", ErrMalformedMarker, digits, convErr)
	}
	width = len(markerOpen) + n + len(markerClose)
	return val, width, true, nil
}
