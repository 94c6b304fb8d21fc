package compress

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRoundTrip(t *testing.T) {
	for _, kind := range []string{TypeGzip, TypeZstd, TypeNone} {
		t.Run(kind, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := WrapWriter(kind, &buf)
			require.NoError(t, err)
			_, err = w.Write([]byte("pmlogger payload"))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			detected, r, err := Detect(&buf)
			require.NoError(t, err)
			assert.Equal(t, kind, detected)

			rc, err := WrapReader(detected, r)
			require.NoError(t, err)
			defer rc.Close()
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "pmlogger payload", string(got))
		})
	}
}

func TestDetectShortInput(t *testing.T) {
	kind, r, err := Detect(bytes.NewReader([]byte{0x1f}))
	require.NoError(t, err)
	assert.Equal(t, TypeNone, kind)
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f}, rest)
}

func TestExtension(t *testing.T) {
	ext, err := Extension(TypeZstd)
	require.NoError(t, err)
	assert.Equal(t, ".tar.zst", ext)

	_, err = Extension("lz4")
	assert.Error(t, err)
}
