package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
)

const readChunkSize = 4096

// Decoder yields parsed JSON values from a newline-delimited byte stream.
//
// The zero value is not usable; construct with NewDecoder. A Decoder is
// single-consumer and non-restartable: once Next has returned io.EOF or a
// read error, the stream is finished.
type Decoder struct {
	r      io.ReadCloser
	logger *slog.Logger

	buf     []byte
	chunk   []byte
	eof     bool
	closed  bool
	readErr error
}

// NewDecoder creates a decoder over r. The decoder owns r and closes it
// when iteration ends or Close is called.
func NewDecoder(r io.ReadCloser, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		r:      r,
		logger: logger.With("component", "stream.decoder"),
		chunk:  make([]byte, readChunkSize),
	}
}

// Next returns the next JSON value in the stream.
//
// It returns io.EOF when the stream is exhausted or the decoder is
// closed. A stream-level read error is returned once and the underlying
// reader is released. Malformed lines are logged and skipped.
func (d *Decoder) Next(ctx context.Context) (json.RawMessage, error) {
	for {
		if err := ctx.Err(); err != nil {
			d.release()
			return nil, err
		}
		if d.closed {
			return nil, io.EOF
		}

		if line, ok := d.nextLine(); ok {
			if len(line) == 0 {
				continue
			}
			if !json.Valid(line) {
				d.logger.Warn("skipping malformed stream line", "line_bytes", len(line))
				continue
			}
			out := make(json.RawMessage, len(line))
			copy(out, line)
			return out, nil
		}

		if d.readErr != nil {
			err := d.readErr
			d.readErr = nil
			d.release()
			return nil, err
		}
		if d.eof {
			d.release()
			return nil, io.EOF
		}

		d.fill()
	}
}

// Close releases the underlying reader. It is safe to call multiple
// times; Next returns io.EOF after Close.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.r.Close()
}

// nextLine cuts the next complete line out of the buffer. At end of
// stream a trailing line without a newline terminator is complete.
func (d *Decoder) nextLine() ([]byte, bool) {
	if i := bytes.IndexByte(d.buf, '\n'); i >= 0 {
		line := bytes.TrimRight(d.buf[:i], "\r")
		d.buf = d.buf[i+1:]
		return bytes.TrimSpace(line), true
	}

	if d.eof && len(d.buf) > 0 {
		line := bytes.TrimSpace(d.buf)
		d.buf = nil
		return line, true
	}

	return nil, false
}

// fill appends the next chunk from the reader to the buffer.
func (d *Decoder) fill() {
	n, err := d.r.Read(d.chunk)
	if n > 0 {
		d.buf = append(d.buf, d.chunk[:n]...)
	}
	if err == io.EOF {
		d.eof = true
	} else if err != nil {
		d.readErr = err
	}
}

func (d *Decoder) release() {
	if !d.closed {
		d.closed = true
		_ = d.r.Close()
	}
}
