// Package srt parses and rebuilds SubRip subtitle text. It is pure and
// does no I/O; the pipeline pairs Parse with Rebuild around translation.
package srt

import (
	"regexp"
	"strings"
)

// Block is one parsed caption: index line, time-range line and the caption
// text lines in order.
type Block struct {
	Index string
	Time  string
	Text  []string
}

var lineSplit = regexp.MustCompile(`\r?\n`)

// Parse splits SRT text into ordered caption blocks.
//
// Blocks with an empty index line are skipped rather than treated as a parse
// error, so leading blank lines are absorbed silently. Downstream rebuilds
// depend on this lenient behavior; do not tighten it.
func Parse(text string) []Block {
	lines := lineSplit.Split(text, -1)
	var blocks []Block

	i := 0
	for i < len(lines) {
		index := strings.TrimSpace(lines[i])
		i++
		if index == "" {
			continue
		}

		var timeRange string
		if i < len(lines) {
			timeRange = strings.TrimSpace(lines[i])
			i++
		}

		var textLines []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, lines[i])
			i++
		}

		// Skip blank separator line(s)
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}

		blocks = append(blocks, Block{Index: index, Time: timeRange, Text: textLines})
	}

	return blocks
}

// Texts returns one joined text per block, in block order. This is the
// batch handed to the translation gateway; Rebuild expects the translated
// batch back in the same order and length.
func Texts(blocks []Block) []string {
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = strings.Join(b.Text, "\n")
	}
	return texts
}

// Rebuild emits SRT text from blocks with their text replaced by
// translatedTexts. Index and time-range lines are carried over unchanged;
// a missing translation becomes an empty text line.
func Rebuild(blocks []Block, translatedTexts []string) string {
	var out []string
	for i, b := range blocks {
		out = append(out, b.Index)
		out = append(out, b.Time)
		if i < len(translatedTexts) {
			out = append(out, translatedTexts[i])
		} else {
			out = append(out, "")
		}
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
