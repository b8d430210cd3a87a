package pdftext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	in := "Hello   world\n\nthis\tis\r\n  spaced"
	assert.Equal(t, "Hello world this is spaced", Normalize(in))
}

func TestNormalizeStripsNonASCII(t *testing.T) {
	in := "café — résumé \x01ok"
	assert.Equal(t, "caf rsum ok", Normalize(in))
}

func TestNormalizeTrims(t *testing.T) {
	assert.Equal(t, "x", Normalize("   x   "))
	assert.Equal(t, "", Normalize(" \n\t "))
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtractMissingFile(t *testing.T) {
	e := New()
	_, err := e.Extract(filepath.Join(t.TempDir(), "nope.pdf"), "1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExtractEmptySource(t *testing.T) {
	e := New()
	path := writeTemp(t, "empty.pdf", nil)
	_, err := e.Extract(path, "1")
	require.ErrorIs(t, err, ErrEmptySource)
	// Empty must not be reported as a size-limit problem.
	assert.NotErrorIs(t, err, ErrTooLarge)
}

func TestExtractTooLarge(t *testing.T) {
	e := New()
	e.MaxBytes = 16
	path := writeTemp(t, "big.pdf", make([]byte, 17))
	_, err := e.Extract(path, "2")
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestMinimumContentBoundary(t *testing.T) {
	e := New()

	// 99 normalized characters is one short of the minimum.
	err := e.checkContent(strings.Repeat("a", 99), "4")
	require.ErrorIs(t, err, ErrInsufficientContent)
	assert.Contains(t, err.Error(), "99 characters")
	assert.Contains(t, err.Error(), "minimum 100")

	// Exactly 100 passes.
	assert.NoError(t, e.checkContent(strings.Repeat("a", 100), "4"))
}

func TestExtractSizeAtLimitPassesSizeCheck(t *testing.T) {
	e := New()
	e.MaxBytes = 16
	path := writeTemp(t, "edge.pdf", make([]byte, 16))
	_, err := e.Extract(path, "3")
	// Not a valid PDF, but it must get past the size gate.
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooLarge)
	assert.NotErrorIs(t, err, ErrEmptySource)
}
