package pointio

import (
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the stream compression applied to a file.
type Compression uint8

const (
	// CompressionNone indicates plain bytes.
	CompressionNone Compression = iota
	// CompressionGzip indicates a gzip stream (.gz).
	CompressionGzip
	// CompressionZstd indicates a zstandard stream (.zst).
	CompressionZstd
	// CompressionLZ4 indicates an LZ4 frame stream (.lz4).
	CompressionLZ4
)

// CompressionForPath returns the compression implied by the file
// extension of path.
func CompressionForPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// TrimCompressionExt strips a trailing compression extension so the
// document extension underneath can be inspected.
func TrimCompressionExt(path string) string {
	if CompressionForPath(path) != CompressionNone {
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}

// Zstandard encoder/decoder pools; both are reusable via Reset.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder(w io.Writer) *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		enc := v.(*zstd.Encoder)
		enc.Reset(w)
		return enc
	}
	enc, _ := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r)
}

type zstdWriteCloser struct {
	enc *zstd.Encoder
}

func (z *zstdWriteCloser) Write(p []byte) (int, error) { return z.enc.Write(p) }

func (z *zstdWriteCloser) Close() error {
	err := z.enc.Close()
	zstdEncoderPool.Put(z.enc)
	return err
}

type zstdReadCloser struct {
	dec *zstd.Decoder
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

// Close returns the decoder to the pool. Decoder.Close would release
// it permanently, so the next user reinitializes it with Reset.
func (z *zstdReadCloser) Close() error {
	zstdDecoderPool.Put(z.dec)
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// WrapReader decorates r with the decompressor for the given
// compression. Closing the returned reader never closes r.
func WrapReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionZstd:
		dec, err := getZstdDecoder(r)
		if err != nil {
			return nil, err
		}
		return &zstdReadCloser{dec: dec}, nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// WrapWriter decorates w with the compressor for the given
// compression. The returned writer must be closed to flush the
// stream; closing it never closes w.
func WrapWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		return &zstdWriteCloser{enc: getZstdEncoder(w)}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}
