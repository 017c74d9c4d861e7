package webvtt

import (
	"strconv"
	"strings"
)

// Header is the signature line every WebVTT document starts with.
const Header = "WEBVTT"

// Setting is a single cue setting such as align:center or line:40%.
type Setting struct {
	Name  string
	Value string
}

// Cue is one WebVTT block. Start and End are milliseconds from media start.
type Cue struct {
	ID       string
	Start    uint64
	End      uint64
	Settings []Setting
	Body     []string
}

// Align returns an align:<value> setting.
func Align(value string) Setting { return Setting{Name: "align", Value: value} }

// Line returns a line:<n>% setting.
func Line(percent int) Setting { return Setting{Name: "line", Value: percentValue(percent)} }

// Position returns a position:<n>% setting.
func Position(percent int) Setting { return Setting{Name: "position", Value: percentValue(percent)} }

// Size returns a size:<n>% setting.
func Size(percent int) Setting { return Setting{Name: "size", Value: percentValue(percent)} }

// TimingLine renders the "start --> end settings" line of the cue.
func (c Cue) TimingLine() string {
	var b strings.Builder
	b.WriteString(FormatMillis(c.Start))
	b.WriteString(" --> ")
	b.WriteString(FormatMillis(c.End))
	for _, s := range c.Settings {
		b.WriteByte(' ')
		b.WriteString(s.Name)
		b.WriteByte(':')
		b.WriteString(s.Value)
	}
	return b.String()
}

// Lines returns the cue as document lines, including the trailing blank line.
func (c Cue) Lines() []string {
	lines := make([]string, 0, len(c.Body)+3)
	if c.ID != "" {
		lines = append(lines, c.ID)
	}
	lines = append(lines, c.TimingLine())
	lines = append(lines, c.Body...)
	lines = append(lines, "")
	return lines
}

// Render joins the header and all cues into a WebVTT document.
func Render(cues []Cue) string {
	lines := []string{Header, ""}
	for _, cue := range cues {
		lines = append(lines, cue.Lines()...)
	}
	return strings.Join(lines, "\n")
}

func percentValue(percent int) string {
	return strconv.Itoa(percent) + "%"
}
