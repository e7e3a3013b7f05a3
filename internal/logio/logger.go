// Package logio records leveled diagnostics for a formatting session.
package logio

import (
	"fmt"
	"strings"
	"sync"
)

// Diagnostic levels, named the way BibTeX labels its messages.
const (
	Warning = "Warning"
	Message = "Message"
	Error   = "Error"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Level string
	Text  string
}

func (ent Entry) String() string {
	if ent.Level == "" {
		return ent.Text
	}
	return ent.Level + "--" + ent.Text
}

// Logger accumulates diagnostics, forwarding each to an optional sink as it
// is recorded.
type Logger struct {
	sync.Mutex
	entries []Entry
	counts  map[string]int
	sink    func(level, text string)
}

// SetSink sets the function that receives every subsequent diagnostic.
func (log *Logger) SetSink(sink func(level, text string)) {
	log.Lock()
	defer log.Unlock()
	log.sink = sink
}

// Printf records a diagnostic at the given level; any trailing newline is
// trimmed since entries are line oriented.
func (log *Logger) Printf(level, mess string, args ...interface{}) {
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	mess = strings.TrimRight(mess, "\n")

	log.Lock()
	defer log.Unlock()
	log.entries = append(log.entries, Entry{level, mess})
	if log.counts == nil {
		log.counts = make(map[string]int)
	}
	log.counts[level]++
	if log.sink != nil {
		log.sink(level, mess)
	}
}

// Count returns how many diagnostics were recorded at level.
func (log *Logger) Count(level string) int {
	log.Lock()
	defer log.Unlock()
	return log.counts[level]
}

// Entries returns a copy of every recorded diagnostic, optionally filtered to
// the given levels.
func (log *Logger) Entries(levels ...string) []Entry {
	log.Lock()
	defer log.Unlock()
	var ents []Entry
	for _, ent := range log.entries {
		if len(levels) == 0 || hasLevel(levels, ent.Level) {
			ents = append(ents, ent)
		}
	}
	return ents
}

// Texts returns the text of every diagnostic recorded at level.
func (log *Logger) Texts(level string) []string {
	var texts []string
	for _, ent := range log.Entries(level) {
		texts = append(texts, ent.Text)
	}
	return texts
}

// ExitCode returns a BibTeX style history code: 0 when spotless, 1 after
// warnings, 2 after errors.
func (log *Logger) ExitCode() int {
	log.Lock()
	defer log.Unlock()
	switch {
	case log.counts[Error] > 0:
		return 2
	case log.counts[Warning] > 0:
		return 1
	}
	return 0
}

func hasLevel(levels []string, level string) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}
