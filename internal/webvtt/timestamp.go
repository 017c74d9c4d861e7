package webvtt

import (
	"fmt"
	"math"
)

// FormatMillis renders an offset in milliseconds as HH:MM:SS.mmm.
func FormatMillis(offset uint64) string {
	hh := offset / 3_600_000
	mm := (offset % 3_600_000) / 60_000
	ss := (offset % 60_000) / 1000
	ms := offset % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hh, mm, ss, ms)
}

// FormatSeconds renders an offset in seconds as HH:MM:SS.mmm, truncating to
// whole milliseconds. Negative and NaN offsets clamp to zero.
func FormatSeconds(offset float64) string {
	if math.IsNaN(offset) || offset <= 0 {
		return FormatMillis(0)
	}
	return FormatMillis(uint64(math.Floor(offset * 1000)))
}
