package bst

import (
	"strings"
	"unicode"
)

// Text routines in this file treat a brace group that opens at brace depth
// zero with a backslash, like {\"o} or {\ss}, as a single "special
// character". Other brace groups are transparent: their braces don't count
// as text, but their contents do.

func isSpace(r rune) bool { return unicode.IsSpace(r) }
func isAlpha(r rune) bool { return unicode.IsLetter(r) }
func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// isSpecialStart reports whether rs[i] opens a special character, given the
// brace depth before it.
func isSpecialStart(rs []rune, i, level int) bool {
	return level == 0 && rs[i] == '{' && i+1 < len(rs) && rs[i+1] == '\\'
}

// controlSeq scans the control sequence name starting at rs[i], just past a
// backslash, returning it and the index after it. Only letters form names.
func controlSeq(rs []rune, i int) (string, int) {
	j := i
	for j < len(rs) && isAlpha(rs[j]) {
		j++
	}
	return string(rs[i:j]), j
}

var (
	upperControlSeqs = map[string]bool{"OE": true, "AE": true, "AA": true, "O": true, "L": true}
	lowerControlSeqs = map[string]bool{"oe": true, "ae": true, "aa": true, "o": true, "l": true}
	dotlessSeqs      = map[string]bool{"i": true, "j": true, "ss": true}
)

// changeCase converts s to title case ('t': lower case everything but the
// first character and the first character after a colon and whitespace),
// lower case ('l'), or upper case ('u'). Text inside braces is left alone,
// except in special characters, whose text and recognized control
// sequences are converted.
func changeCase(s string, mode rune) string {
	rs := []rune(s)
	out := make([]rune, 0, len(rs))
	level := 0
	prevColon := false
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '{':
			keep := mode == 't' && (i == 0 || prevColon && isSpace(rs[i-1]))
			if isSpecialStart(rs, i, level) && !keep {
				i = changeSpecialCase(rs, i, mode, &out) - 1
			} else {
				level++
				out = append(out, c)
			}
			prevColon = false

		case c == '}':
			if level > 0 {
				level--
			}
			out = append(out, c)
			prevColon = false

		case level > 0:
			out = append(out, c)

		default:
			switch mode {
			case 't':
				if !(i == 0 || prevColon && isSpace(rs[i-1])) {
					c = unicode.ToLower(c)
				}
				if c == ':' {
					prevColon = true
				} else if !isSpace(c) {
					prevColon = false
				}
			case 'l':
				c = unicode.ToLower(c)
			case 'u':
				c = unicode.ToUpper(c)
			}
			out = append(out, c)
		}
	}
	return string(out)
}

// changeSpecialCase converts the special character opening at rs[i],
// appending it to out, and returns the index after it.
func changeSpecialCase(rs []rune, i int, mode rune, out *[]rune) int {
	*out = append(*out, '{')
	level := 1
	j := i + 1
	for j < len(rs) && level > 0 {
		j++ // backslash
		cs, next := controlSeq(rs, j)
		switch {
		case mode == 'u' && dotlessSeqs[cs]:
			*out = append(*out, []rune(strings.ToUpper(cs))...)
			for next < len(rs) && isSpace(rs[next]) {
				next++
			}
		case mode == 'u' && lowerControlSeqs[cs]:
			*out = append(*out, '\\')
			*out = append(*out, []rune(strings.ToUpper(cs))...)
		case mode != 'u' && upperControlSeqs[cs]:
			*out = append(*out, '\\')
			*out = append(*out, []rune(strings.ToLower(cs))...)
		default:
			*out = append(*out, '\\')
			*out = append(*out, []rune(cs)...)
		}
		j = next
		for j < len(rs) && level > 0 && rs[j] != '\\' {
			c := rs[j]
			switch c {
			case '{':
				level++
			case '}':
				level--
			default:
				if mode == 'u' {
					c = unicode.ToUpper(c)
				} else {
					c = unicode.ToLower(c)
				}
			}
			*out = append(*out, c)
			j++
		}
	}
	return j
}

// purify removes non-alphanumeric characters, turning whitespace, hyphens,
// and ties into spaces. Special characters reduce to their letters; a
// recognized control sequence contributes its first letter, both letters
// for the oe, ae, and ss ligatures.
func purify(s string) string {
	rs := []rune(s)
	out := make([]rune, 0, len(rs))
	level := 0
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case isSpecialStart(rs, i, level):
			level = 1
			j := i + 1
			for j < len(rs) && level > 0 {
				j++ // backslash
				cs, next := controlSeq(rs, j)
				if upperControlSeqs[cs] || lowerControlSeqs[cs] || dotlessSeqs[cs] {
					csr := []rune(cs)
					out = append(out, csr[0])
					switch cs {
					case "oe", "OE", "ae", "AE", "ss":
						out = append(out, csr[1])
					}
				}
				j = next
				for j < len(rs) && level > 0 && rs[j] != '\\' {
					switch c := rs[j]; {
					case isAlnum(c):
						out = append(out, c)
					case c == '{':
						level++
					case c == '}':
						level--
					}
					j++
				}
			}
			i = j - 1
		case isSpace(c) || c == '-' || c == '~':
			out = append(out, ' ')
		case isAlnum(c):
			out = append(out, c)
		case c == '{':
			level++
		case c == '}':
			if level > 0 {
				level--
			}
		}
	}
	return string(out)
}

// scanText counts text characters from the start of rs, stopping once limit
// have been seen (limit < 0 scans everything). A special character counts
// once, braces not at all. It returns the index where scanning stopped, the
// count, and the brace depth left open there.
func scanText(rs []rune, limit int) (end, count, level int) {
	i := 0
	for i < len(rs) && (limit < 0 || count < limit) {
		c := rs[i]
		i++
		switch c {
		case '{':
			level++
			if level == 1 && i < len(rs) && rs[i] == '\\' {
				i++
				for i < len(rs) && level > 0 {
					switch rs[i] {
					case '}':
						level--
					case '{':
						level++
					}
					i++
				}
				count++
			}
		case '}':
			if level > 0 {
				level--
			}
		default:
			count++
		}
	}
	return i, count, level
}

// textLength counts the text characters in s.
func textLength(s string) int {
	_, n, _ := scanText([]rune(s), -1)
	return n
}

// textPrefix returns the first n text characters of s, closing any braces
// left open.
func textPrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	rs := []rune(s)
	end, _, level := scanText(rs, n)
	return string(rs[:end]) + strings.Repeat("}", level)
}

// textWidth measures s in cmr10 units. Special characters measure their
// recognized control sequence plus their remaining text.
func textWidth(s string) int {
	rs := []rune(s)
	width := 0
	level := 0
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case isSpecialStart(rs, i, level):
			level = 1
			j := i + 1
			for j < len(rs) && level > 0 {
				j++ // backslash
				cs, next := controlSeq(rs, j)
				if next == j && next < len(rs) {
					next++ // single non-letter control sequence, like \'
				}
				if w, ok := controlSeqWidths[cs]; ok {
					width += w
				} else if upperControlSeqs[cs] || lowerControlSeqs[cs] || dotlessSeqs[cs] {
					width += charWidths[[]rune(cs)[0]]
				}
				j = next
				for j < len(rs) && isSpace(rs[j]) {
					j++
				}
				for j < len(rs) && level > 0 && rs[j] != '\\' {
					switch rs[j] {
					case '}':
						level--
					case '{':
						level++
					default:
						width += charWidths[rs[j]]
					}
					j++
				}
			}
			i = j - 1
		case c == '{':
			level++
			width += charWidths[c]
		case c == '}':
			if level > 0 {
				level--
			}
			width += charWidths[c]
		default:
			width += charWidths[c]
		}
	}
	return width
}

// addPeriod appends a period unless s is empty or its last non-brace
// character already ends a sentence.
func addPeriod(s string) string {
	if s == "" {
		return s
	}
	rs := []rune(s)
	i := len(rs) - 1
	for i >= 0 && rs[i] == '}' {
		i--
	}
	if i >= 0 {
		switch rs[i] {
		case '.', '?', '!':
			return s
		}
	}
	return s + "."
}

// substring returns up to n characters of s starting at the 1-based
// position start. A negative start counts from the end, taking the n
// characters that end there.
func substring(s string, start, n int) string {
	rs := []rune(s)
	l := len(rs)
	if n <= 0 || start == 0 || start > l || start < -l {
		return ""
	}
	if start > 0 {
		from := start - 1
		to := l
		if n < l-from {
			to = from + n
		}
		return string(rs[from:to])
	}
	to := l + start + 1
	from := 0
	if n < to {
		from = to - n
	}
	return string(rs[from:to])
}

func isEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
