// Package detect cross-checks extracted groups against the rendered ground
// truth and flags groups whose members landed on more than one page.
package detect

import (
	"sort"
	"strings"

	"github.com/tamzidan/docreflow/internal/groups"
	"github.com/tamzidan/docreflow/internal/render"
	"github.com/tamzidan/docreflow/internal/rules"
)

// Normalize collapses runs of whitespace to single spaces and lowercases,
// so unit text and rendered text compare despite wrapping differences.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Detector resolves unit text to rendered pages.
type Detector struct {
	minWordRun int
}

// New builds a detector from the catalog.
func New(r rules.Rules) *Detector {
	return &Detector{minWordRun: r.Detection.MinWordRun}
}

// Inspect resolves every non-empty member of every group against the
// rendered pages and marks a group split when its members' recorded pages
// cover more than one distinct value. The rendered pages are read-only.
func (d *Detector) Inspect(gs []*groups.Group, pages []render.RenderedPage) {
	normTexts := make([]string, len(pages))
	pageWords := make([][]string, len(pages))
	for i, p := range pages {
		normTexts[i] = Normalize(p.Text)
		pageWords[i] = strings.Fields(normTexts[i])
	}

	for _, g := range gs {
		seen := make(map[int]bool)
		for _, m := range g.NonEmptyMembers() {
			for _, page := range d.resolve(Normalize(m.Text), pages, normTexts, pageWords) {
				seen[page] = true
			}
		}
		g.Pages = sortedKeys(seen)
		g.Split = len(g.Pages) > 1
	}
}

// resolve finds the page (or page pair) holding the normalized member text.
// Exact containment wins, first page in page order; a verbatim repeat later
// in the document can be mis-attributed to an earlier page, which is an
// accepted approximation. When no page contains the text whole, the
// partial-split fallback looks for the text straddling two pages.
func (d *Detector) resolve(member string, pages []render.RenderedPage, normTexts []string, pageWords [][]string) []int {
	if member == "" {
		return nil
	}
	for i, text := range normTexts {
		if strings.Contains(text, member) {
			return []int{pages[i].Number}
		}
	}
	return d.resolveSplit(member, pages, pageWords)
}

// resolveSplit finds the first page whose longest contiguous word run shared
// with the member meets the threshold, then scans later pages for a second
// run such that the two fragments concatenate back to the full member text.
func (d *Detector) resolveSplit(member string, pages []render.RenderedPage, pageWords [][]string) []int {
	memberWords := strings.Fields(member)
	for i := range pages {
		run := longestCommonRun(memberWords, pageWords[i])
		if run.length < d.minWordRun {
			continue
		}
		first := strings.Join(memberWords[run.aStart:run.aStart+run.length], " ")
		for j := i + 1; j < len(pages); j++ {
			second := longestCommonRun(memberWords, pageWords[j])
			if second.length == 0 {
				continue
			}
			rest := strings.Join(memberWords[second.aStart:second.aStart+second.length], " ")
			if strings.Contains(first+" "+rest, member) {
				return []int{pages[i].Number, pages[j].Number}
			}
		}
		// Candidate first fragment with no completing second fragment:
		// the member stays unresolved.
		return nil
	}
	return nil
}

type wordRun struct {
	length int
	aStart int
	bStart int
}

// longestCommonRun finds the longest run of words consecutive in both a and
// b (not merely a common subsequence). Ties go to the run found first, i.e.
// the earliest starting positions in both texts: only a strictly longer run
// displaces the current best.
func longestCommonRun(a, b []string) wordRun {
	if len(a) == 0 || len(b) == 0 {
		return wordRun{}
	}
	best := wordRun{}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best.length {
					best = wordRun{
						length: curr[j],
						aStart: i - curr[j],
						bStart: j - curr[j],
					}
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return best
}

func sortedKeys(set map[int]bool) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
