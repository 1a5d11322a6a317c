// Package rules holds the rule catalog that drives classification, grouping,
// page estimation, split detection and reflow. The catalog is an immutable
// value loaded once at startup; components receive it at construction instead
// of reading ambient state.
package rules

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/tamzidan/docreflow/internal/document"
)

// ConfigError reports a malformed rule catalog. It is fatal: the pipeline
// refuses to start, so no document is ever mutated under bad rules.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rules: %s: %s", e.Field, e.Reason)
}

// Rules is the full catalog.
type Rules struct {
	Patterns  map[string][]string `toml:"patterns"`
	Paragraph ParagraphRules      `toml:"paragraph"`
	Geometry  Geometry            `toml:"geometry"`
	Detection Detection           `toml:"detection"`
	Reflow    ReflowRules         `toml:"reflow"`
}

// ParagraphRules are the thresholds of the paragraph heuristic.
type ParagraphRules struct {
	MinSentences  int      `toml:"min_sentences"`
	MinWords      int      `toml:"min_words"`
	Abbreviations []string `toml:"abbreviations"`
}

// Geometry is the coarse page model used by the estimator. All values are in
// points under a fixed font-size assumption.
type Geometry struct {
	PageContentHeight float64 `toml:"page_content_height"`
	ContentWidth      float64 `toml:"content_width"`
	LineHeight        float64 `toml:"line_height"`
	AvgCharWidth      float64 `toml:"avg_char_width"`
	BlockPadding      float64 `toml:"block_padding"`
}

// Detection configures the split detector's fuzzy fallback.
type Detection struct {
	// MinWordRun is the minimum length, in words, of a contiguous matching
	// run before a page counts as a split fragment.
	MinWordRun int `toml:"min_word_run"`
}

// ReflowRules bound the corrective loop and the spacing passes.
type ReflowRules struct {
	MaxAttempts int `toml:"max_attempts"`
	// MinListRun gates trailing spacing to lists longer than this many items.
	MinListRun int `toml:"min_list_run"`
}

// defaultAbbreviations must not register as sentence boundaries. The list
// covers Indonesian business, academic and address forms plus month names.
var defaultAbbreviations = []string{
	"PT", "CV", "UD", "Tbk", "Ltd", "Inc", "Corp",
	"Dr", "dr", "Prof", "Ir", "Drs", "Dra", "ST", "SE", "SH", "MM",
	"M.Si", "M.Kom", "M.Pd", "S.Kom", "S.E", "S.H",
	"Hj", "H", "KH",
	"No", "Nomor", "Tel", "Telp", "Fax", "Hp",
	"Jl", "Jln", "Gg",
	"Kec", "Kel", "Kab", "Prov", "RT", "RW",
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agt", "Sep", "Okt", "Nov", "Des",
}

// Default returns the built-in catalog (A4 geometry, the stock patterns).
func Default() Rules {
	return Rules{
		Patterns: map[string][]string{
			"heading+paragraph": {"heading", "paragraph"},
			"paragraph":         {"paragraph"},
			"heading+list":      {"heading", "list"},
		},
		Paragraph: ParagraphRules{
			MinSentences:  2,
			MinWords:      15,
			Abbreviations: defaultAbbreviations,
		},
		Geometry: Geometry{
			PageContentHeight: 727.2,
			ContentWidth:      447.9,
			LineHeight:        13.8,
			AvgCharWidth:      6.0,
			BlockPadding:      6.0,
		},
		Detection: Detection{MinWordRun: 6},
		Reflow:    ReflowRules{MaxAttempts: 10, MinListRun: 3},
	}
}

// LoadFile overlays a TOML catalog on the defaults. A missing file yields
// the defaults unchanged; a present but invalid file is a ConfigError.
func LoadFile(path string) (Rules, error) {
	r := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return r, nil
	}
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return Rules{}, &ConfigError{Field: path, Reason: err.Error()}
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// Validate checks the catalog for values the pipeline cannot run with.
func (r Rules) Validate() error {
	if len(r.Patterns) == 0 {
		return &ConfigError{Field: "patterns", Reason: "at least one pattern is required"}
	}
	for name, tags := range r.Patterns {
		if len(tags) == 0 {
			return &ConfigError{Field: "patterns." + name, Reason: "empty tag sequence"}
		}
		for _, t := range tags {
			if !document.KnownTag(t) {
				return &ConfigError{Field: "patterns." + name, Reason: fmt.Sprintf("unknown tag %q", t)}
			}
		}
	}
	if err := noDuplicateSequences(r.Patterns); err != nil {
		return err
	}
	if r.Paragraph.MinSentences < 1 {
		return &ConfigError{Field: "paragraph.min_sentences", Reason: "must be at least 1"}
	}
	if r.Paragraph.MinWords < 1 {
		return &ConfigError{Field: "paragraph.min_words", Reason: "must be at least 1"}
	}
	for field, v := range map[string]float64{
		"geometry.page_content_height": r.Geometry.PageContentHeight,
		"geometry.content_width":       r.Geometry.ContentWidth,
		"geometry.line_height":         r.Geometry.LineHeight,
		"geometry.avg_char_width":      r.Geometry.AvgCharWidth,
	} {
		if v <= 0 {
			return &ConfigError{Field: field, Reason: "must be positive"}
		}
	}
	if r.Geometry.BlockPadding < 0 {
		return &ConfigError{Field: "geometry.block_padding", Reason: "must not be negative"}
	}
	if r.Detection.MinWordRun < 1 {
		return &ConfigError{Field: "detection.min_word_run", Reason: "must be at least 1"}
	}
	if r.Reflow.MaxAttempts < 1 {
		return &ConfigError{Field: "reflow.max_attempts", Reason: "must be at least 1"}
	}
	if r.Reflow.MinListRun < 0 {
		return &ConfigError{Field: "reflow.min_list_run", Reason: "must not be negative"}
	}
	return nil
}

// PatternNames returns the pattern names in stable (sorted) order.
func (r Rules) PatternNames() []string {
	names := make([]string, 0, len(r.Patterns))
	for name := range r.Patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func noDuplicateSequences(patterns map[string][]string) error {
	seen := make(map[string]string, len(patterns))
	for name, tags := range patterns {
		key := fmt.Sprint(tags)
		if other, ok := seen[key]; ok {
			return &ConfigError{
				Field:  "patterns." + name,
				Reason: fmt.Sprintf("same tag sequence as %q", other),
			}
		}
		seen[key] = name
	}
	return nil
}
