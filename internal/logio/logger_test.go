package logio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var log Logger
	var sunk []string
	log.SetSink(func(level, text string) {
		sunk = append(sunk, level+": "+text)
	})

	assert.Equal(t, 0, log.ExitCode(), "spotless")

	log.Printf(Message, "hello")
	log.Printf(Warning, "missing database entry for %q", "doe20")
	log.Printf(Warning, "trailing newline\n")
	assert.Equal(t, 1, log.ExitCode(), "after warnings")

	log.Printf(Error, "boom")
	assert.Equal(t, 2, log.ExitCode(), "after errors")

	assert.Equal(t, 2, log.Count(Warning))
	assert.Equal(t, []string{`missing database entry for "doe20"`, "trailing newline"}, log.Texts(Warning))
	assert.Equal(t, []string{
		"Message: hello",
		`Warning: missing database entry for "doe20"`,
		"Warning: trailing newline",
		"Error: boom",
	}, sunk)

	ents := log.Entries(Message, Error)
	require.Len(t, ents, 2)
	assert.Equal(t, "Message--hello", ents[0].String())
	assert.Equal(t, "Error--boom", ents[1].String())
}

func TestWriter(t *testing.T) {
	var log Logger
	lw := Writer{Log: &log, Level: Message}

	fmt.Fprintf(&lw, "one\ntw")
	assert.Equal(t, []string{"one"}, log.Texts(Message))

	fmt.Fprintf(&lw, "o\nthree")
	assert.Equal(t, []string{"one", "two"}, log.Texts(Message))

	require.NoError(t, lw.Close())
	assert.Equal(t, []string{"one", "two", "three"}, log.Texts(Message))
}
