package extractor

import (
	"fmt"
	"math"
	"strings"
)

// Caption is one structured caption entry from a backend response, with
// offsets in fractional seconds.
type Caption struct {
	Start    float64
	Duration float64
	End      float64
	Text     string

	hasDuration bool
	hasEnd      bool
}

// parseCaptions reads backend caption entries out of a decoded JSON array.
// Entries that are not objects are dropped.
func parseCaptions(items []interface{}) []Caption {
	var captions []Caption
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		var c Caption
		if f, ok := numValue(entry, "start", "startTime"); ok {
			c.Start = f
		}
		if f, ok := numValue(entry, "duration"); ok {
			c.Duration = f
			c.hasDuration = true
		}
		if f, ok := numValue(entry, "end", "endTime"); ok {
			c.End = f
			c.hasEnd = true
		}
		c.Text = stringField(entry, "text", "content")

		captions = append(captions, c)
	}
	return captions
}

func numValue(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := m[key].(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// ConvertToSRT renders captions as SRT text: 1-indexed blocks of index line,
// time-range line and caption text, each followed by a blank line.
func ConvertToSRT(captions []Caption) string {
	if len(captions) == 0 {
		return ""
	}

	var b strings.Builder
	for i, c := range captions {
		end := c.Start + c.Duration
		if !c.hasDuration {
			end = 0
			if c.hasEnd {
				end = c.End
			}
		}

		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTime(c.Start), FormatTime(end))
		fmt.Fprintf(&b, "%s\n\n", c.Text)
	}

	return b.String()
}

// FormatTime formats seconds as the SRT time form HH:MM:SS,mmm. Every
// component truncates; sub-millisecond remainders are dropped, not rounded.
// The epsilon absorbs binary float residue so a decimal input like 3661.234
// keeps its exact millisecond instead of landing one below it.
func FormatTime(seconds float64) string {
	totalMillis := int64(math.Floor(seconds*1000 + 1e-6))

	hours := totalMillis / 3600000
	minutes := (totalMillis % 3600000) / 60000
	secs := (totalMillis % 60000) / 1000
	millis := totalMillis % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
