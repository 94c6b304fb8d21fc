package compress

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	TypeNone = "none"
	TypeGzip = "gzip"
	TypeZstd = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Extension returns the archive file extension for kind.
func Extension(kind string) (string, error) {
	switch kind {
	case "", TypeGzip:
		return ".tar.gz", nil
	case TypeZstd:
		return ".tar.zst", nil
	case TypeNone:
		return ".tar", nil
	default:
		return "", fmt.Errorf("unsupported compression: %s", kind)
	}
}

func WrapWriter(kind string, w io.Writer) (io.WriteCloser, error) {
	switch kind {
	case TypeNone:
		return nopWriteCloser{w}, nil
	case "", TypeGzip:
		return gzip.NewWriter(w), nil
	case TypeZstd:
		return zstd.NewWriter(w)
	default:
		return nil, fmt.Errorf("unsupported compression: %s", kind)
	}
}

func WrapReader(kind string, r io.Reader) (io.ReadCloser, error) {
	switch kind {
	case "", TypeNone:
		return io.NopCloser(r), nil
	case TypeGzip:
		return gzip.NewReader(r)
	case TypeZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{Decoder: dec}, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", kind)
	}
}

// Detect peeks at the stream header and reports which compression it uses.
// The returned reader replays the peeked bytes.
func Detect(r io.Reader) (string, io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", br, err
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return TypeGzip, br, nil
	case bytes.HasPrefix(head, zstdMagic):
		return TypeZstd, br, nil
	default:
		return TypeNone, br, nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (n nopWriteCloser) Close() error { return nil }

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}
