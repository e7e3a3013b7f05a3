package bst

import (
	"strings"
	"unicode"
)

// splitNames splits a name list on the word "and" (in any case) standing
// alone between whitespace at brace depth zero. A blank list has no names.
func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	rs := []rune(s)
	var names []string
	level := 0
	start := 0
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; {
		case c == '{':
			level++
		case c == '}':
			if level > 0 {
				level--
			}
		case level == 0 && isSpace(c) && i+4 < len(rs) &&
			strings.EqualFold(string(rs[i+1:i+4]), "and") && isSpace(rs[i+4]):
			names = append(names, strings.TrimSpace(string(rs[start:i])))
			i += 3
			start = i + 1
		}
	}
	return append(names, strings.TrimSpace(string(rs[start:])))
}

// nameToken is one word of a name; sep is the separator that preceded it
// within its part: ' ', '-', or '~'; zero for the first word of a part.
type nameToken struct {
	text string
	sep  rune
}

type tokenRange struct{ start, end int }

func (r tokenRange) empty() bool { return r.end <= r.start }

// parsedName is a name tokenized and split into its four parts.
type parsedName struct {
	tokens               []nameToken
	first, von, last, jr tokenRange
}

func (pn parsedName) part(letter rune) []nameToken {
	var r tokenRange
	switch letter {
	case 'f':
		r = pn.first
	case 'v':
		r = pn.von
	case 'l':
		r = pn.last
	case 'j':
		r = pn.jr
	}
	if r.empty() {
		return nil
	}
	return pn.tokens[r.start:r.end]
}

// tokenizeName splits a single name into words at whitespace, hyphens, and
// ties, recording the token index of each comma. Brace groups never split.
func tokenizeName(name string) (tokens []nameToken, commas []int) {
	rs := []rune(name)
	var cur strings.Builder
	starting := true
	var sep rune
	level := 0
	end := func() {
		if !starting {
			tokens = append(tokens, nameToken{text: cur.String(), sep: sep})
			cur.Reset()
			sep = 0
			starting = true
		}
	}
	for _, c := range rs {
		switch {
		case level > 0:
			cur.WriteRune(c)
			if c == '{' {
				level++
			} else if c == '}' {
				level--
			}
		case c == '{':
			level++
			cur.WriteRune(c)
			starting = false
		case c == '}':
			// unbalanced; dropped
		case c == ',':
			end()
			commas = append(commas, len(tokens))
			sep = 0
		case isSpace(c) || c == '-' || c == '~':
			if !starting {
				end()
				if isSpace(c) {
					sep = ' '
				} else {
					sep = c
				}
			}
		default:
			cur.WriteRune(c)
			starting = false
		}
	}
	end()
	return tokens, commas
}

// parseName decomposes a name into First, von, Last, and Jr parts using
// BibTeX's rules for the "First von Last", "von Last, First", and
// "von Last, Jr, First" forms.
func parseName(name string) (pn parsedName, tooManyCommas bool) {
	tokens, commas := tokenizeName(name)
	pn.tokens = tokens
	n := len(tokens)
	if n == 0 {
		return pn, len(commas) > 2
	}

	switch len(commas) {
	case 0:
		lastEnd := n
		vonStart := 0
		for ; vonStart < lastEnd-1; vonStart++ {
			if isVonToken(tokens[vonStart].text) {
				vonEnd := vonEndIndex(tokens, vonStart, lastEnd)
				pn.first = tokenRange{0, vonStart}
				pn.von = tokenRange{vonStart, vonEnd}
				pn.last = tokenRange{vonEnd, lastEnd}
				return pn, false
			}
		}
		for vonStart > 0 && tokens[vonStart].sep == '-' {
			vonStart--
		}
		pn.first = tokenRange{0, vonStart}
		pn.last = tokenRange{vonStart, lastEnd}
		return pn, false

	case 1:
		lastEnd := commas[0]
		vonEnd := vonEndIndex(tokens, 0, lastEnd)
		pn.von = tokenRange{0, vonEnd}
		pn.last = tokenRange{vonEnd, lastEnd}
		pn.first = tokenRange{lastEnd, n}
		return pn, false

	default:
		lastEnd, jrEnd := commas[0], commas[1]
		vonEnd := vonEndIndex(tokens, 0, lastEnd)
		pn.von = tokenRange{0, vonEnd}
		pn.last = tokenRange{vonEnd, lastEnd}
		pn.jr = tokenRange{lastEnd, jrEnd}
		pn.first = tokenRange{jrEnd, n}
		return pn, len(commas) > 2
	}
}

// vonEndIndex finds the end of the von part starting at vonStart: just past
// the last von token before the final token of the last part.
func vonEndIndex(tokens []nameToken, vonStart, lastEnd int) int {
	if lastEnd <= vonStart {
		return vonStart
	}
	for vonEnd := lastEnd - 1; vonEnd > vonStart; vonEnd-- {
		if isVonToken(tokens[vonEnd-1].text) {
			return vonEnd
		}
	}
	return vonStart
}

// isVonToken reports whether a token starts with a lower case letter. Brace
// groups at the start decide by their first letter only when they are
// special characters; other groups are skipped over as caseless.
func isVonToken(tok string) bool {
	rs := []rune(tok)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '{':
			if i+1 < len(rs) && rs[i+1] == '\\' {
				j := i + 2
				cs, next := controlSeq(rs, j)
				switch {
				case upperControlSeqs[cs]:
					return false
				case lowerControlSeqs[cs] || dotlessSeqs[cs]:
					return true
				}
				for j = next; j < len(rs) && rs[j] != '}'; j++ {
					if isAlpha(rs[j]) {
						return unicode.IsLower(rs[j])
					}
				}
				return false
			}
			level := 1
			for i++; i < len(rs) && level > 0; i++ {
				if rs[i] == '{' {
					level++
				} else if rs[i] == '}' {
					level--
				}
			}
			i--
		case isAlpha(c):
			return unicode.IsLower(c)
		}
	}
	return false
}

// ParseName decomposes a single BibTeX name into a Person.
func ParseName(name string) Person {
	pn, _ := parseName(name)
	return Person{
		First: partWords(pn.part('f')),
		Von:   partWords(pn.part('v')),
		Last:  partWords(pn.part('l')),
		Jr:    partWords(pn.part('j')),
	}
}

// partWords joins tokens into words, keeping hyphenated tokens together.
func partWords(tokens []nameToken) []string {
	var words []string
	for i, tok := range tokens {
		if i > 0 && tok.sep == '-' {
			words[len(words)-1] += "-" + tok.text
		} else {
			words = append(words, tok.text)
		}
	}
	return words
}

// formatName renders a parsed name with a format.name$ pattern such as
// "{vv~}{ll}{, jj}{, f.}". Each brace group names one part with a letter
// (f, v, l, or j), doubled for full words and single for abbreviations,
// optionally followed by a {delimiter} between words, and surrounded by
// literal text. Groups whose part is empty are omitted. Text outside
// groups is copied as is. Bad part letters are reported through warn and
// their groups dropped.
func formatName(pn parsedName, pattern string, warn func(mess string, args ...interface{})) string {
	rs := []rune(pattern)
	var out strings.Builder
	for i := 0; i < len(rs); i++ {
		if rs[i] != '{' {
			out.WriteRune(rs[i])
			continue
		}
		end := matchBrace(rs, i)
		out.WriteString(formatNameGroup(pn, rs[i+1:end], warn))
		i = end
	}
	return out.String()
}

// matchBrace returns the index of the brace closing the one at rs[i], or
// len(rs) when there is none.
func matchBrace(rs []rune, i int) int {
	level := 0
	for j := i; j < len(rs); j++ {
		switch rs[j] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return j
			}
		}
	}
	return len(rs)
}

func formatNameGroup(pn parsedName, group []rune, warn func(mess string, args ...interface{})) string {
	at := -1
	for i := 0; i < len(group); i++ {
		if group[i] == '{' {
			i = matchBrace(group, i)
			continue
		}
		if isAlpha(group[i]) {
			at = i
			break
		}
	}
	if at < 0 {
		return string(group)
	}

	letter := unicode.ToLower(group[at])
	switch letter {
	case 'f', 'v', 'l', 'j':
	default:
		if warn != nil {
			warn("the format string has an illegal name part letter %q", group[at])
		}
		return ""
	}

	pre := string(group[:at])
	i := at + 1
	full := false
	if i < len(group) && unicode.ToLower(group[i]) == letter {
		full = true
		i++
	}

	var delim *string
	if i < len(group) && group[i] == '{' {
		end := matchBrace(group, i)
		d := string(group[i+1 : end])
		delim = &d
		i = end + 1
	}
	post := ""
	if i < len(group) {
		post = string(group[i:])
	}

	tokens := pn.part(letter)
	if len(tokens) == 0 {
		return ""
	}

	var part strings.Builder
	for k, tok := range tokens {
		if full {
			part.WriteString(tok.text)
		} else {
			part.WriteString(abbreviate(tok.text))
		}
		if k == len(tokens)-1 {
			break
		}
		if delim != nil {
			part.WriteString(*delim)
			continue
		}
		if !full {
			part.WriteByte('.')
		}
		switch next := tokens[k+1].sep; {
		case next == '-' || next == '~':
			part.WriteRune(next)
		case k == len(tokens)-2 || textLength(part.String()) < 3:
			part.WriteByte('~')
		default:
			part.WriteByte(' ')
		}
	}

	text := pre + part.String()
	switch {
	case strings.HasSuffix(post, "~~"):
		text += post[:len(post)-1]
	case strings.HasSuffix(post, "~"):
		text += post[:len(post)-1]
		if textLength(text) < 3 {
			text += "~"
		} else {
			text += " "
		}
	default:
		text += post
	}
	return text
}

// abbreviate returns a token's first letter, or its leading brace group
// whole.
func abbreviate(tok string) string {
	rs := []rune(tok)
	for i := 0; i < len(rs); i++ {
		if rs[i] == '{' {
			if end := matchBrace(rs, i); end < len(rs) {
				return string(rs[i : end+1])
			}
			return string(rs[i:])
		}
		if isAlpha(rs[i]) {
			return string(rs[i])
		}
	}
	return ""
}

type nameKey struct {
	names   string
	index   int
	pattern string
}

// nameCache memoizes name splitting and formatting for one session.
type nameCache struct {
	lists     map[string][]string
	formatted map[nameKey]string
}

func (nc *nameCache) split(names string) []string {
	if list, ok := nc.lists[names]; ok {
		return list
	}
	list := splitNames(names)
	if nc.lists == nil {
		nc.lists = make(map[string][]string)
	}
	nc.lists[names] = list
	return list
}

func (nc *nameCache) lookup(key nameKey) (string, bool) {
	s, ok := nc.formatted[key]
	return s, ok
}

func (nc *nameCache) store(key nameKey, s string) {
	if nc.formatted == nil {
		nc.formatted = make(map[nameKey]string)
	}
	nc.formatted[key] = s
}
