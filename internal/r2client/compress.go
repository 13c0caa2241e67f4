package r2client

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix marks zstd objects.
const CompressedSuffix = ".zst"

// IsCompressed reports whether key names a zstd object.
func IsCompressed(key string) bool {
	return strings.HasSuffix(key, CompressedSuffix)
}

// Compress returns the zstd encoding of data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("compress: create encoder: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("compress: write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compress: close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// NewDecompressReader streams the zstd payload in r. Close releases the
// decoder; it does not close r.
func NewDecompressReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decompress: create decoder: %w", err)
	}
	return dec.IOReadCloser(), nil
}
