// Package bblio handles formatted bibliography output: line wrapping in the
// manner of BibTeX, and delivery to the output writers.
package bblio

import (
	"io"
	"strings"
	"unicode"
)

const (
	// DefaultWidth is BibTeX's max_print_line.
	DefaultWidth = 79

	// minBreak is BibTeX's min_print_line: a line is never broken at or
	// before this many runes while searching backwards.
	minBreak = 3

	indent = "  "
)

// Wrap breaks text into lines of at most width runes, greedily, at
// whitespace only. Continuation lines are indented by two spaces. A run of
// text with no whitespace in reach of width is broken at the first
// whitespace after it, or left whole. Trailing whitespace is dropped.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = DefaultWidth
	}
	rs := []rune(strings.TrimRightFunc(text, unicode.IsSpace))

	var lines []string
	for len(rs) > width {
		brk := -1
		for i := width; i >= minBreak; i-- {
			if unicode.IsSpace(rs[i]) {
				brk = i
				break
			}
		}
		if brk < 0 {
			for i := width + 1; i < len(rs); i++ {
				if unicode.IsSpace(rs[i]) {
					brk = i
					break
				}
			}
		}
		if brk < 0 {
			break
		}

		lines = append(lines, trimRight(rs[:brk]))

		rest := rs[brk:]
		for len(rest) > 0 && unicode.IsSpace(rest[0]) {
			rest = rest[1:]
		}
		next := make([]rune, 0, len(indent)+len(rest))
		next = append(next, []rune(indent)...)
		rs = append(next, rest...)
	}
	return append(lines, string(rs))
}

func trimRight(rs []rune) string {
	return strings.TrimRightFunc(string(rs), unicode.IsSpace)
}

// LineBuffer accumulates written text until Newline wraps it into output,
// which Commit then delivers to Dest and every Tee.
type LineBuffer struct {
	Width int
	Dest  io.Writer
	Tees  []io.Writer

	pending strings.Builder
	out     strings.Builder
	lines   int
}

// WriteString appends s to the pending line.
func (lb *LineBuffer) WriteString(s string) {
	lb.pending.WriteString(s)
}

// Pending returns the text written since the last Newline.
func (lb *LineBuffer) Pending() string { return lb.pending.String() }

// Newline wraps the pending text into the output. An empty pending buffer
// produces an empty line; a buffer holding only whitespace produces nothing.
func (lb *LineBuffer) Newline() {
	text := lb.pending.String()
	lb.pending.Reset()
	if text != "" && strings.TrimSpace(text) == "" {
		return
	}
	for _, line := range Wrap(text, lb.Width) {
		lb.out.WriteString(line)
		lb.out.WriteByte('\n')
		lb.lines++
	}
}

// Flush emits any pending non-empty text as a final line.
func (lb *LineBuffer) Flush() {
	if lb.pending.Len() > 0 {
		lb.Newline()
	}
}

// Lines returns how many output lines have been produced.
func (lb *LineBuffer) Lines() int { return lb.lines }

// String returns all output produced so far.
func (lb *LineBuffer) String() string { return lb.out.String() }

// Commit writes all output to Dest and then to each Tee, flushing those
// that buffer. Nil writers and io.Discard are skipped.
func (lb *LineBuffer) Commit() error {
	for _, w := range append([]io.Writer{lb.Dest}, lb.Tees...) {
		if w == nil || w == io.Discard {
			continue
		}
		if _, err := io.WriteString(w, lb.out.String()); err != nil {
			return err
		}
		if f, ok := w.(interface{ Flush() error }); ok {
			if err := f.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}
