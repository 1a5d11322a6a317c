// Package report renders the outcome of a reflow run for humans and
// machines: a JSON-serializable struct, a Markdown summary, and an HTML
// rendering of that summary.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// GroupResult is the outcome for one extracted group.
type GroupResult struct {
	Pattern  string `json:"pattern"`
	Units    int    `json:"units"`
	Pages    []int  `json:"pages,omitempty"`
	Split    bool   `json:"split"`
	Attempts int    `json:"attempts,omitempty"`
	Resolved bool   `json:"resolved"`
}

// Report summarizes a complete run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Status      string    `json:"status"`

	Units      int            `json:"units"`
	TagCounts  map[string]int `json:"tag_counts"`
	Groups     []GroupResult  `json:"groups"`
	SplitCount int            `json:"split_count"`
	Breaks     int            `json:"breaks_inserted"`

	// RenderSkipped is set when detection never ran, either by request or
	// because the renderer failed; RenderError carries the failure.
	RenderSkipped bool   `json:"render_skipped,omitempty"`
	RenderError   string `json:"render_error,omitempty"`
}

// Unresolved returns the split groups that never converged.
func (r *Report) Unresolved() []GroupResult {
	var out []GroupResult
	for _, g := range r.Groups {
		if g.Split && !g.Resolved {
			out = append(out, g)
		}
	}
	return out
}

// Markdown renders the report as a human-readable summary.
func (r *Report) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Reflow Report\n\n")
	fmt.Fprintf(&sb, "Generated %s.\n\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "**Status:** %s\n\n", r.Status)

	fmt.Fprintf(&sb, "## Document\n\n")
	fmt.Fprintf(&sb, "- Content units: %d\n", r.Units)
	for _, tag := range sortedTags(r.TagCounts) {
		fmt.Fprintf(&sb, "- %s: %d\n", tag, r.TagCounts[tag])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## Groups\n\n")
	if len(r.Groups) == 0 {
		sb.WriteString("No groups matched.\n\n")
	} else {
		sb.WriteString("| Pattern | Units | Pages | Split | Attempts | Resolved |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, g := range r.Groups {
			fmt.Fprintf(&sb, "| %s | %d | %s | %s | %d | %s |\n",
				g.Pattern, g.Units, pageList(g.Pages), yesNo(g.Split), g.Attempts, yesNo(g.Resolved))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Repairs\n\n")
	fmt.Fprintf(&sb, "- Split groups: %d\n", r.SplitCount)
	fmt.Fprintf(&sb, "- Blank paragraphs inserted: %d\n", r.Breaks)
	if unresolved := r.Unresolved(); len(unresolved) > 0 {
		fmt.Fprintf(&sb, "- Unresolved after budget: %d\n", len(unresolved))
	}
	if r.RenderSkipped {
		sb.WriteString("\nDetection skipped: no rendered ground truth.\n")
		if r.RenderError != "" {
			fmt.Fprintf(&sb, "Renderer error: %s\n", r.RenderError)
		}
	}
	return sb.String()
}

// HTML renders the Markdown summary as an HTML fragment.
func (r *Report) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(r.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedTags(counts map[string]int) []string {
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func pageList(pages []int) string {
	if len(pages) == 0 {
		return "-"
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
