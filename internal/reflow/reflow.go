// Package reflow repairs split groups by pushing them onto the next page.
// The engine inserts forced blank paragraphs ahead of a group until the
// layout estimator agrees the whole group shares one page, bounded by a
// configured attempt budget.
package reflow

import (
	"fmt"

	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/groups"
	"github.com/tamzidan/docreflow/internal/layout"
	"github.com/tamzidan/docreflow/internal/rules"
)

// ConvergenceError reports a group that still straddles pages after the
// attempt budget ran out. The inserted breaks are kept; callers report the
// group as unresolved rather than rolling back.
type ConvergenceError struct {
	Pattern  string
	Pages    []int
	Attempts int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("group %q still spans pages %v after %d attempts", e.Pattern, e.Pages, e.Attempts)
}

// Engine fixes split groups against a layout estimator.
type Engine struct {
	estimator   *layout.Estimator
	maxAttempts int
}

// NewEngine builds an engine from the catalog.
func NewEngine(est *layout.Estimator, r rules.Rules) *Engine {
	return &Engine{estimator: est, maxAttempts: r.Reflow.MaxAttempts}
}

// Fix inserts blank paragraphs before the group's first member, one per
// attempt, re-estimating after each insert, until every member lands on a
// single estimated page. It returns the number of attempts spent. When the
// budget is exhausted the breaks stay in place and a *ConvergenceError
// carries the group's final estimated pages.
func (e *Engine) Fix(doc *document.Document, g *groups.Group) (int, error) {
	members := g.NonEmptyMembers()
	if len(members) == 0 {
		return 0, nil
	}
	first := members[0]
	if doc.Index(first) < 0 {
		return 0, fmt.Errorf("group %q: first member not in document", g.Pattern)
	}

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		doc.InsertBefore(first, doc.NewBreak())
		assignment := e.estimator.AssignPages(doc.Units())
		if onOnePage(assignment, members) {
			return attempt, nil
		}
	}

	assignment := e.estimator.AssignPages(doc.Units())
	return e.maxAttempts, &ConvergenceError{
		Pattern:  g.Pattern,
		Pages:    memberPages(assignment, members),
		Attempts: e.maxAttempts,
	}
}

func onOnePage(a layout.Assignment, members []*document.ContentUnit) bool {
	page := a.Page(members[0])
	for _, m := range members[1:] {
		if a.Page(m) != page {
			return false
		}
	}
	return true
}

func memberPages(a layout.Assignment, members []*document.ContentUnit) []int {
	var pages []int
	seen := make(map[int]bool)
	for _, m := range members {
		p := a.Page(m)
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	return pages
}
