package loctag

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Empty and marker-free responses
// ---------------------------------------------------------------------------

func TestParseEmptyResponse(t *testing.T) {
	records, err := Parse("", 500, 300)
	if err != nil {
		t.Fatalf("Parse(\"\") returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Parse(\"\") = %v, want empty", records)
	}
}

func TestParseNoMarkers(t *testing.T) {
	// Text with no markers cannot be localized; nothing is emitted.
	records, err := Parse("plain text without any markers", 500, 300)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestFallbackCeiling(t *testing.T) {
	// With no markers anywhere, the scale denominator is DefaultMaxLoc.
	segs := []segment(nil)
	s := deriveScale(segs, DefaultMaxLoc, DefaultMaxLoc*2)
	if s.x != 1 {
		t.Errorf("x scale = %v, want 1 (width equals fallback ceiling)", s.x)
	}
	if s.y != 2 {
		t.Errorf("y scale = %v, want 2", s.y)
	}
}

// ---------------------------------------------------------------------------
// Concrete end-to-end scenarios
// ---------------------------------------------------------------------------

func TestParseTwoFragments(t *testing.T) {
	raw := "Hello<|LOC_100|><|LOC_100|><|LOC_200|><|LOC_200|>" +
		"World<|LOC_972|><|LOC_0|><|LOC_972|><|LOC_100|>"

	records, err := Parse(raw, 972, 972)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []Record{
		{
			Text: "Hello",
			Box:  Box{{100, 100}, {200, 100}, {200, 200}, {100, 200}},
		},
		{
			Text: "World",
			Box:  Box{{972, 0}, {972, 0}, {972, 100}, {972, 100}},
		},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %+v, want %+v", records, want)
	}
}

func TestParseEightMarkers(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		width, height int
		want          Box
	}{
		{
			// Max marker value equals both image dimensions: scale = 1,
			// coordinates pass through unchanged.
			name:  "identity scale",
			raw:   "txt<|LOC_10|><|LOC_20|><|LOC_500|><|LOC_20|><|LOC_500|><|LOC_80|><|LOC_10|><|LOC_80|>",
			width: 500, height: 500,
			want: Box{{10, 20}, {500, 20}, {500, 80}, {10, 80}},
		},
		{
			// Max value 1000 with a 500x250 image: every coordinate is
			// scaled down and truncated toward zero.
			name:  "downscale",
			raw:   "txt<|LOC_1000|><|LOC_1000|><|LOC_0|><|LOC_0|><|LOC_500|><|LOC_100|><|LOC_999|><|LOC_3|>",
			width: 500, height: 250,
			want: Box{{500, 250}, {0, 0}, {250, 25}, {499, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(tt.raw, tt.width, tt.height)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("got %d records, want 1", len(records))
			}
			if records[0].Box != tt.want {
				t.Errorf("box = %v, want %v", records[0].Box, tt.want)
			}
		})
	}
}

func TestParseFourMarkersRectangle(t *testing.T) {
	// 4 values form an axis-aligned bounding box; the two missing corners
	// are synthesized.
	records, err := Parse("label<|LOC_10|><|LOC_20|><|LOC_30|><|LOC_40|>", 100, 100)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	// Max value 40, 100x100 image: scale = 2.5.
	want := Box{{25, 50}, {75, 50}, {75, 100}, {25, 100}}
	got := records[0].Box
	if got != want {
		t.Fatalf("box = %v, want %v", got, want)
	}
	// Diagonal corners are the scaled inputs; the polygon is axis-aligned.
	if got[0].X != got[3].X || got[1].X != got[2].X {
		t.Error("vertical edges not aligned")
	}
	if got[0].Y != got[1].Y || got[2].Y != got[3].Y {
		t.Error("horizontal edges not aligned")
	}
}

func TestParseDegenerateGroup(t *testing.T) {
	for _, raw := range []string{
		"a<|LOC_5|>",
		"a<|LOC_5|><|LOC_6|>",
		"a<|LOC_5|><|LOC_6|><|LOC_7|>",
	} {
		records, err := Parse(raw, 640, 480)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", raw, err)
		}
		if len(records) != 1 {
			t.Fatalf("Parse(%q): got %d records, want 1", raw, len(records))
		}
		if records[0].Box != (Box{}) {
			t.Errorf("Parse(%q): box = %v, want all-zero", raw, records[0].Box)
		}
	}
}

func TestParseExtraMarkersIgnored(t *testing.T) {
	// 5th-7th values on the bbox branch and 9th+ on the polygon branch
	// are ignored, not errors.
	records, err := Parse("a<|LOC_0|><|LOC_0|><|LOC_50|><|LOC_50|><|LOC_99|>", 100, 100)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	// Max is 99 here: the ignored 5th value still counts toward the ceiling.
	scale := float64(100) / float64(99)
	wantX := int(50 * scale)
	if records[0].Box[2].X != wantX {
		t.Errorf("box[2].X = %d, want %d", records[0].Box[2].X, wantX)
	}

	records, err = Parse(
		"b<|LOC_1|><|LOC_2|><|LOC_3|><|LOC_4|><|LOC_5|><|LOC_6|><|LOC_7|><|LOC_8|><|LOC_0|><|LOC_0|>",
		8, 8)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := Box{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	if records[0].Box != want {
		t.Errorf("box = %v, want %v", records[0].Box, want)
	}
}

// ---------------------------------------------------------------------------
// Fragment policy
// ---------------------------------------------------------------------------

func TestParseDropsTrailingText(t *testing.T) {
	records, err := Parse("a<|LOC_1|><|LOC_2|><|LOC_3|><|LOC_4|>trailing with no markers", 100, 100)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 || records[0].Text != "a" {
		t.Errorf("records = %+v, want only %q", records, "a")
	}
}

func TestParseDropsWhitespaceFragments(t *testing.T) {
	// The fragment between the two groups trims to empty and is dropped,
	// but its marker value (400) still participates in the global max.
	raw := "a<|LOC_100|><|LOC_100|><|LOC_200|><|LOC_200|>  <|LOC_400|>"
	records, err := Parse(raw, 800, 800)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	// Max 400 with an 800px image: scale 2.
	want := Box{{200, 200}, {400, 200}, {400, 400}, {200, 400}}
	if records[0].Box != want {
		t.Errorf("box = %v, want %v", records[0].Box, want)
	}
}

func TestParseFragmentWhitespaceTrimmed(t *testing.T) {
	records, err := Parse("  padded text \n<|LOC_1|><|LOC_1|><|LOC_2|><|LOC_2|>", 2, 2)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 || records[0].Text != "padded text" {
		t.Errorf("records = %+v, want text %q", records, "padded text")
	}
}

// ---------------------------------------------------------------------------
// Degenerate scale inputs
// ---------------------------------------------------------------------------

func TestParseZeroDimensions(t *testing.T) {
	// Zero dimensions degrade the scale to 1; coordinates pass through.
	records, err := Parse("a<|LOC_10|><|LOC_20|><|LOC_30|><|LOC_40|>", 0, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := Box{{10, 20}, {30, 20}, {30, 40}, {10, 40}}
	if records[0].Box != want {
		t.Errorf("box = %v, want %v", records[0].Box, want)
	}
}

func TestParseAllZeroMarkers(t *testing.T) {
	// A global max of zero would divide by zero; scale degrades to 1.
	records, err := Parse("a<|LOC_0|><|LOC_0|><|LOC_0|><|LOC_0|>", 640, 480)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if records[0].Box != (Box{}) {
		t.Errorf("box = %v, want all-zero", records[0].Box)
	}
}

// ---------------------------------------------------------------------------
// Marker grammar
// ---------------------------------------------------------------------------

func TestParseMarkerGrammarStrict(t *testing.T) {
	// Near-misses are plain text, not markers.
	for _, raw := range []string{
		"a<|loc_5|>",    // wrong case
		"a<|LOC_|>",     // no digits
		"a<|LOC_5|",     // unterminated
		"a<|LOC 5|>",    // embedded space
		"a<|TAG_5|>",    // unknown tag
		"a<|LOC_5x|>",   // trailing junk in digits
		"a <| LOC_5 |>", // spaced delimiters
	} {
		records, err := Parse(raw, 100, 100)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", raw, err)
		}
		if len(records) != 0 {
			t.Errorf("Parse(%q) = %+v, want no records", raw, records)
		}
	}
}

func TestParseMalformedDigits(t *testing.T) {
	// A digit run that overflows int is a fatal parse error for the
	// whole response.
	raw := "a<|LOC_99999999999999999999999|>"
	_, err := Parse(raw, 100, 100)
	if err == nil {
		t.Fatal("expected error for overflowing marker value, got nil")
	}
	if !errors.Is(err, ErrMalformedMarker) {
		t.Errorf("error = %v, want ErrMalformedMarker", err)
	}
}

// ---------------------------------------------------------------------------
// Ordering and purity
// ---------------------------------------------------------------------------

func TestParseOrderPreserved(t *testing.T) {
	var sb strings.Builder
	wantTexts := []string{"first", "second", "third", "fourth"}
	for _, txt := range wantTexts {
		sb.WriteString(txt)
		sb.WriteString("<|LOC_1|><|LOC_2|><|LOC_3|><|LOC_4|>")
	}

	records, err := Parse(sb.String(), 100, 100)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != len(wantTexts) {
		t.Fatalf("got %d records, want %d", len(records), len(wantTexts))
	}
	for i, want := range wantTexts {
		if records[i].Text != want {
			t.Errorf("records[%d].Text = %q, want %q", i, records[i].Text, want)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	raw := "第一行<|LOC_10|><|LOC_10|><|LOC_400|><|LOC_40|>" +
		"第二行<|LOC_10|><|LOC_60|><|LOC_400|><|LOC_90|>"

	first, err := Parse(raw, 1024, 768)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	second, err := Parse(raw, 1024, 768)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different output")
	}
}

// ---------------------------------------------------------------------------
// Wire shape
// ---------------------------------------------------------------------------

func TestRecordJSONShape(t *testing.T) {
	rec := Record{
		Text: "Hello",
		Box:  Box{{100, 100}, {200, 100}, {200, 200}, {100, 200}},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"text":"Hello","box":[[100,100],[200,100],[200,200],[100,200]]}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, rec) {
		t.Errorf("round trip = %+v, want %+v", back, rec)
	}
}
