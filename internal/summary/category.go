package summary

import (
	"bytes"
	"encoding/json"
)

// Span is an In/Out pair in milliseconds.
type Span struct {
	In  uint64 `json:"In"`
	Out uint64 `json:"Out"`
}

// zeroAnchor is prepended to every entry's Timelines for chart rendering.
var zeroAnchor = Span{}

// Entry is one ranked item of a category.
type Entry struct {
	Name       string
	Confidence float64
	Count      int
	Timelines  []Span
}

type entryBody struct {
	Confidence float64 `json:"Confidence"`
	Count      int     `json:"Count"`
	Timelines  []Span  `json:"Timelines"`
}

// Category is an ordered list of entries. It encodes as a JSON object keyed
// by entry name, preserving rank order.
type Category []Entry

// MarshalJSON implements json.Marshaler.
func (c Category) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(entryBody{
			Confidence: entry.Confidence,
			Count:      entry.Count,
			Timelines:  entry.Timelines,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Names returns the entry names in rank order.
func (c Category) Names() []string {
	names := make([]string, len(c))
	for i, entry := range c {
		names[i] = entry.Name
	}
	return names
}
