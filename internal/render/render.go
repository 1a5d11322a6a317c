// Package render talks to the external document-to-PDF conversion service
// and extracts per-page text with positions from the returned artifact. Both
// sides sit behind narrow interfaces so the split detector can be exercised
// against synthetic fixtures.
package render

import (
	"context"
	"fmt"
)

// Span is one positioned run of text on a rendered page, in reading order.
type Span struct {
	X, Y float64
	W    float64
	Text string
}

// RenderedPage is the ground truth for one page of the rendered artifact.
// It is read-only to consumers.
type RenderedPage struct {
	Number int
	Width  float64
	Height float64
	Spans  []Span
	Text   string // Concatenated page text in reading order.
}

// Renderer converts the current document bytes into a paginated artifact.
type Renderer interface {
	Convert(ctx context.Context, docx []byte) ([]byte, error)
}

// Extractor pulls per-page text and positions out of a paginated artifact.
type Extractor interface {
	ExtractPages(artifact []byte) ([]RenderedPage, error)
}

// RetryableError marks a conversion failure worth retrying (throttling or a
// transient server error).
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("render service status %d: %s", e.StatusCode, e.Message)
}
