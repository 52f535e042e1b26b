// Package output renders batch recognition results as JSON, line-oriented
// text, or a spreadsheet.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bbiangul/ocrloc"
)

// Entry is one image's outcome in a batch: either a result or an error.
type Entry struct {
	Name   string
	Result *ocrloc.Result
	Err    error
}

// Batch collects per-image outcomes in processing order. It marshals to a
// JSON object keyed by file name, preserving insertion order, matching
// the document shape consumers of this tool already parse.
type Batch struct {
	entries []Entry
}

// Add records a successful result under the given file name.
func (b *Batch) Add(name string, res *ocrloc.Result) {
	b.entries = append(b.entries, Entry{Name: name, Result: res})
}

// AddError records a per-image failure under the given file name.
func (b *Batch) AddError(name string, err error) {
	b.entries = append(b.entries, Entry{Name: name, Err: err})
}

// Entries returns the recorded outcomes in insertion order.
func (b *Batch) Entries() []Entry {
	return b.entries
}

// Len returns the number of recorded outcomes.
func (b *Batch) Len() int {
	return len(b.entries)
}

// MarshalJSON renders the batch as an ordered JSON object. Failed images
// appear as {"error": "..."} like the rest of the document's consumers
// expect.
func (b *Batch) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if e.Err != nil {
			val, err = json.Marshal(map[string]string{"error": e.Err.Error()})
		} else {
			val, err = json.Marshal(e.Result)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSON writes the batch as an indented JSON document. Non-ASCII text is
// written as-is rather than escaped, and HTML escaping is disabled so
// recognized text survives round-tripping byte for byte.
func JSON(w io.Writer, b *Batch) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// Text writes one result in the human-readable format: a file name
// header, the full recognized text, and a region count.
func Text(w io.Writer, name string, res *ocrloc.Result) error {
	if _, err := fmt.Fprintf(w, "--- %s ---\n", name); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, res.FullText); err != nil {
		return err
	}
	if len(res.Texts) > 0 {
		if _, err := fmt.Fprintf(w, "识别到 %d 处文字区域\n", len(res.Texts)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
