// Package webvtt formats WebVTT timestamps and renders cue blocks.
//
// Documents always begin with the "WEBVTT" header followed by a blank line.
// Each cue is rendered as a timing line (with optional settings in the order
// the caller supplies them), one or more body lines, and a trailing blank
// line. Timestamps are HH:MM:SS.mmm with hours zero-padded to two digits.
package webvtt
