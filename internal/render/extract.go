package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads a rendered PDF and reconstructs each page's text spans
// in top-to-bottom, left-to-right order. Character fragments are grouped
// into rows by Y tolerance and joined into lines; this is reading-order
// reconstruction, not layout analysis.
type PDFExtractor struct {
	// RowTolerance is the Y distance, in points, within which fragments
	// belong to the same row.
	RowTolerance float64
	// WordGapFactor is the fraction of the font size beyond which a
	// horizontal gap between fragments becomes a space.
	WordGapFactor float64
}

// NewPDFExtractor returns an extractor with calibrated defaults.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		RowTolerance:  3.0,
		WordGapFactor: 0.3,
	}
}

// ExtractPages pulls every page's dimensions, row spans and concatenated
// text out of the artifact.
func (e *PDFExtractor) ExtractPages(artifact []byte) ([]RenderedPage, error) {
	reader, err := pdf.NewReader(bytes.NewReader(artifact), int64(len(artifact)))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	total := reader.NumPage()
	pages := make([]RenderedPage, 0, total)
	for num := 1; num <= total; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}

		rp := RenderedPage{Number: num}
		rp.Width, rp.Height = pageSize(page)
		rp.Spans = e.RowSpans(page.Content().Text)

		var sb strings.Builder
		for i, span := range rp.Spans {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(span.Text)
		}
		rp.Text = sb.String()
		pages = append(pages, rp)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("artifact has no readable pages")
	}
	return pages, nil
}

// pageSize reads the page's MediaBox when present. Pages inheriting their
// box from the tree report zero; consumers fall back to configured geometry.
func pageSize(page pdf.Page) (w, h float64) {
	mb := page.V.Key("MediaBox")
	if mb.IsNull() || mb.Len() != 4 {
		return 0, 0
	}
	w = mb.Index(2).Float64() - mb.Index(0).Float64()
	h = mb.Index(3).Float64() - mb.Index(1).Float64()
	return w, h
}

// RowSpans groups raw text fragments into row spans. Fragments within
// RowTolerance of a row's Y band join that row; rows are emitted top to
// bottom (PDF Y grows upward), fragments left to right, with spaces where
// the horizontal gap exceeds the word-gap threshold.
func (e *PDFExtractor) RowSpans(texts []pdf.Text) []Span {
	var kept []pdf.Text
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	type row struct {
		yMin, yMax float64
		texts      []pdf.Text
	}
	var rows []*row
	for _, t := range kept {
		placed := false
		for _, r := range rows {
			if t.Y >= r.yMin-e.RowTolerance && t.Y <= r.yMax+e.RowTolerance {
				r.texts = append(r.texts, t)
				if t.Y < r.yMin {
					r.yMin = t.Y
				}
				if t.Y > r.yMax {
					r.yMax = t.Y
				}
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, &row{yMin: t.Y, yMax: t.Y, texts: []pdf.Text{t}})
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].yMax > rows[j].yMax })

	spans := make([]Span, 0, len(rows))
	for _, r := range rows {
		sort.SliceStable(r.texts, func(i, j int) bool { return r.texts[i].X < r.texts[j].X })

		var sb strings.Builder
		first := r.texts[0]
		lastEnd := first.X
		for i, t := range r.texts {
			if i > 0 {
				threshold := e.WordGapFactor * t.FontSize
				if threshold <= 0 {
					threshold = 1.0
				}
				if t.X-lastEnd > threshold {
					sb.WriteString(" ")
				}
			}
			sb.WriteString(t.S)
			lastEnd = t.X + t.W
		}
		spans = append(spans, Span{
			X:    first.X,
			Y:    r.yMax,
			W:    lastEnd - first.X,
			Text: sb.String(),
		})
	}
	return spans
}
