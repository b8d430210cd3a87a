package pdftext

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Classified extraction failures. Callers match with errors.Is; none of
// these are retryable.
var (
	ErrNotFound            = errors.New("source file not found")
	ErrEmptySource         = errors.New("source file is empty")
	ErrTooLarge            = errors.New("source file exceeds size limit")
	ErrInsufficientContent = errors.New("insufficient extractable text")
)

// Default limits for lecture PDFs.
const (
	DefaultMaxBytes   = 50 << 20 // 50 MiB
	DefaultMaxPages   = 50
	DefaultMinTextLen = 100
)

// Extractor turns a lecture PDF into normalized plain text, enforcing size,
// page and minimum-content limits.
type Extractor struct {
	MaxBytes   int64
	MaxPages   int
	MinTextLen int
}

// New returns an Extractor with the default limits.
func New() *Extractor {
	return &Extractor{
		MaxBytes:   DefaultMaxBytes,
		MaxPages:   DefaultMaxPages,
		MinTextLen: DefaultMinTextLen,
	}
}

// Extract reads the PDF at path and returns its normalized text.
// lectureLabel only decorates log lines and error messages.
func (e *Extractor) Extract(path, lectureLabel string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: lecture %s (%s)", ErrNotFound, lectureLabel, path)
		}
		return "", fmt.Errorf("stat source for lecture %s: %w", lectureLabel, err)
	}

	// Zero-byte sources are reported distinctly, before the size ceiling.
	if fi.Size() == 0 {
		return "", fmt.Errorf("%w: lecture %s", ErrEmptySource, lectureLabel)
	}
	if fi.Size() > e.MaxBytes {
		sizeMiB := math.Round(float64(fi.Size()) / float64(1<<20))
		return "", fmt.Errorf("%w: lecture %s is %.0f MiB (limit %d MiB)",
			ErrTooLarge, lectureLabel, sizeMiB, e.MaxBytes>>20)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf for lecture %s: %w", lectureLabel, err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > e.MaxPages {
		log.Printf("WARN: lecture %s has %d pages, reading first %d only", lectureLabel, pages, e.MaxPages)
		pages = e.MaxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("WARN: lecture %s page %d text extraction failed: %v", lectureLabel, i, err)
			continue
		}
		sb.WriteString(text)
		sb.WriteByte(' ')
	}

	normalized := Normalize(sb.String())
	if err := e.checkContent(normalized, lectureLabel); err != nil {
		return "", err
	}
	return normalized, nil
}

// checkContent enforces the minimum normalized-text length. The character
// count is part of the message so callers can see how short the source was.
func (e *Extractor) checkContent(normalized, lectureLabel string) error {
	if len(normalized) < e.MinTextLen {
		return fmt.Errorf("%w: lecture %s yielded %d characters (minimum %d)",
			ErrInsufficientContent, lectureLabel, len(normalized), e.MinTextLen)
	}
	return nil
}

// Normalize collapses whitespace runs to a single space, drops everything
// outside the printable 7-bit ASCII range and trims the result.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, ch := range s {
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v' {
			space = true
			continue
		}
		if ch < 0x20 || ch > 0x7e {
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(ch)
	}
	return sb.String()
}
