package gncxml

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// gzipMagic is the two-byte signature at the start of every gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// NewReader wraps r, transparently decompressing gzip input. Detection peeks
// at the first two bytes without consuming them, so plain XML passes through
// untouched. The returned ReadCloser must be closed on every exit path; it
// does not close the underlying reader.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to sniff input stream: %w", err)
	}
	if bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, nil
	}
	return io.NopCloser(br), nil
}
