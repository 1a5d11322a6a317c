// Package layout simulates linear pagination with a coarse, calibrated height
// model. It plans where units will probably land; the rendered artifact
// remains the ground truth.
package layout

import (
	"math"

	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/rules"
)

// Assignment maps every unit to its estimated 1-based page.
type Assignment map[document.UnitID]int

// Page returns the estimated page for a unit, or 0 if the unit was not part
// of the estimated sequence.
func (a Assignment) Page(u *document.ContentUnit) int { return a[u.ID] }

// Estimator is the coarse layout model. No text shaping is performed: a unit
// costs whole wrapped lines at a fixed average character width.
type Estimator struct {
	geo rules.Geometry
}

// NewEstimator builds an estimator for the catalog's page geometry.
func NewEstimator(geo rules.Geometry) *Estimator {
	return &Estimator{geo: geo}
}

// EstimateHeight returns the unit's estimated height in points. An empty
// unit costs one line; a non-empty unit costs its wrapped line count plus
// fixed block padding.
func (e *Estimator) EstimateHeight(u *document.ContentUnit) float64 {
	if u.IsEmpty() {
		return e.geo.LineHeight
	}
	charsPerLine := e.geo.ContentWidth / e.geo.AvgCharWidth
	lines := math.Ceil(float64(len([]rune(u.Text))) / charsPerLine)
	if lines < 1 {
		lines = 1
	}
	return lines*e.geo.LineHeight + e.geo.BlockPadding
}

// AssignPages walks the units once, accumulating heights. A unit that does
// not fit on the current page becomes the first content of the next page;
// the model never splits one unit across two pages. The result is recomputed
// from scratch and is only valid until the next document mutation.
func (e *Estimator) AssignPages(units []*document.ContentUnit) Assignment {
	assignment := make(Assignment, len(units))
	page := 1
	cumulative := 0.0
	for _, u := range units {
		h := e.EstimateHeight(u)
		if cumulative+h > e.geo.PageContentHeight {
			page++
			cumulative = h
		} else {
			cumulative += h
		}
		assignment[u.ID] = page
	}
	return assignment
}
