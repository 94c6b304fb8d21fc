package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := Structure("resolve time-series dir", "none of [a b] exist")
	wrapped := fmt.Errorf("LAYOUT_RESOLVED: %w", base)

	assert.Equal(t, KindStructure, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindStructure))
	assert.False(t, Is(wrapped, KindFormat))
	assert.Contains(t, wrapped.Error(), "resolve time-series dir: none of [a b] exist")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestUsageHasNoOp(t *testing.T) {
	err := Usage("input archive not found: %s", "x.tar.gz")
	assert.Equal(t, "input archive not found: x.tar.gz", err.Error())
	assert.True(t, Is(err, KindUsage))
}

func TestPackageKind(t *testing.T) {
	err := fmt.Errorf("packaged: %w", Package("write /out/x.tar.gz", "%w", fmt.Errorf("disk full")))
	assert.Equal(t, KindPackage, KindOf(err))
	assert.Equal(t, "packaged: write /out/x.tar.gz: disk full", err.Error())
}
