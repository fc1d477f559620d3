package gncxml_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncbooks/gncledger/internal/gncxml"
)

func TestNewReader_PlainPassthrough(t *testing.T) {
	payload := []byte("<?xml version=\"1.0\"?><gnc-v2></gnc-v2>")

	r, err := gncxml.NewReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestNewReader_GzipDetected(t *testing.T) {
	payload := []byte("<?xml version=\"1.0\"?><gnc-v2></gnc-v2>")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r, err := gncxml.NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestNewReader_EmptyInput(t *testing.T) {
	r, err := gncxml.NewReader(bytes.NewReader(nil))
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewReader_TruncatedGzipHeader(t *testing.T) {
	// Starts with the gzip magic but is not a valid stream.
	_, err := gncxml.NewReader(bytes.NewReader([]byte{0x1f, 0x8b, 0x00}))
	assert.Error(t, err)
}
