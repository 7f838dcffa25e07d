// Package sse decodes the line-oriented streaming protocol used by the
// torrent option endpoints. Each frame is one "data: <json>" line followed
// by a blank line; a frame with an empty payload is the server's signal that
// the stream is about to close.
package sse

import (
	"bytes"
	"encoding/json"

	"github.com/amaumene/gotorrentstream/internal/errors"
)

// prefixLen is the length of the "data:" prefix stripped from each frame.
const prefixLen = 5

// Decoder turns a chunked text stream into discrete JSON values. Chunks may
// split frames at any byte boundary; partial frames are buffered until their
// terminating blank line arrives. The scan position is kept between chunks
// so the buffer is never rescanned from the start.
type Decoder struct {
	buf  []byte
	pos  int
	emit func(json.RawMessage) error
}

// NewDecoder creates a decoder that calls emit once per complete non-empty
// frame, in frame order. An error returned by emit stops decoding.
func NewDecoder(emit func(json.RawMessage) error) *Decoder {
	return &Decoder{emit: emit}
}

// Write feeds one chunk to the decoder. A malformed frame returns a decode
// error; the decoder must not be used afterwards.
func (d *Decoder) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)

	for d.pos < len(d.buf) {
		if d.buf[d.pos] != '\n' {
			d.pos++
			continue
		}

		start := prefixLen
		if start > d.pos {
			start = d.pos
		}
		line := bytes.TrimSpace(d.buf[start:d.pos])

		if len(line) > 0 {
			if !json.Valid(line) {
				return len(p), errors.NewDecodeError("malformed frame payload", nil)
			}
			payload := make(json.RawMessage, len(line))
			copy(payload, line)
			if err := d.emit(payload); err != nil {
				return len(p), err
			}
		}

		// skip the payload newline and the frame-terminating blank line
		d.buf = d.buf[min(d.pos+2, len(d.buf)):]
		d.pos = 0
	}

	return len(p), nil
}

// Buffered reports how many bytes of an incomplete frame are pending.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}
