package logio

import (
	"bytes"
	"sync"
)

// Writer implements an io.Writer that records each completed line as a
// diagnostic.
type Writer struct {
	Log   *Logger
	Level string

	mu  sync.Mutex
	buf bytes.Buffer
}

// Write buffers p and records any completed lines.
func (lw *Writer) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.buf.Write(p)
	lw.flushLines(false)
	return len(p), nil
}

// Sync records any partial line left in the buffer.
func (lw *Writer) Sync() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.flushLines(true)
	return nil
}

// Close calls Sync.
func (lw *Writer) Close() error {
	return lw.Sync()
}

func (lw *Writer) flushLines(all bool) {
	for lw.buf.Len() > 0 {
		i := bytes.IndexByte(lw.buf.Bytes(), '\n')
		if i >= 0 {
			lw.Log.Printf(lw.Level, "%s", lw.buf.Next(i))
			lw.buf.Next(1)
		} else if all {
			lw.Log.Printf(lw.Level, "%s", lw.buf.Next(lw.buf.Len()))
		} else {
			break
		}
	}
}
