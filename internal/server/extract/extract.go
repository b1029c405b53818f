// Package extract turns uploaded documents into plain text. An empty result
// is valid (image-only PDFs have no text layer); only unreadable input is an
// error.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned for input the extractor cannot parse.
var ErrUnreadable = errors.New("unreadable document")

// Extractor pulls text out of a document.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Func adapts a plain function to Extractor.
type Func func(ctx context.Context, data []byte) (string, error)

func (f Func) Extract(ctx context.Context, data []byte) (string, error) { return f(ctx, data) }

// IsPDF reports whether data starts with the PDF magic.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// PDF extracts the text layer with github.com/ledongthuc/pdf.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

func (p *PDF) Extract(ctx context.Context, data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", fmt.Errorf("%w: not a PDF file", ErrUnreadable)
	}

	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}

	return strings.TrimSpace(string(b)), nil
}
