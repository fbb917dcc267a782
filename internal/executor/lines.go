// SPDX-License-Identifier: AGPL-3.0-or-later
package executor

import (
	"bytes"
	"io"
)

// LineWriter copies bytes to out and hands every complete line, without its
// newline, to onLine.
type LineWriter struct {
	out    io.Writer
	buf    bytes.Buffer
	onLine func(string)
}

func NewLineWriter(out io.Writer, onLine func(string)) *LineWriter {
	return &LineWriter{out: out, onLine: onLine}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.out != nil {
		if _, err := w.out.Write(p); err != nil {
			return 0, err
		}
	}
	start := 0
	for i, b := range p {
		if b == '\n' {
			w.buf.Write(p[start:i])
			w.flushLine()
			start = i + 1
		}
	}
	if start < len(p) {
		w.buf.Write(p[start:])
	}
	return len(p), nil
}

// Flush emits a trailing partial line, if any.
func (w *LineWriter) Flush() {
	if w.buf.Len() > 0 {
		w.flushLine()
	}
}

func (w *LineWriter) flushLine() {
	line := w.buf.String()
	w.buf.Reset()
	if w.onLine != nil {
		w.onLine(line)
	}
}
