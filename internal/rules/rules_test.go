package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
}

func TestLoadFileMissingYieldsDefaults(t *testing.T) {
	r, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if r.Reflow.MaxAttempts != 10 || r.Detection.MinWordRun != 6 {
		t.Errorf("missing file did not yield defaults: %+v", r)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
[reflow]
max_attempts = 3

[patterns]
"heading+paragraph" = ["heading", "paragraph"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if r.Reflow.MaxAttempts != 3 {
		t.Errorf("max_attempts = %d, want 3", r.Reflow.MaxAttempts)
	}
	// Untouched sections keep their defaults.
	if r.Paragraph.MinWords != 15 {
		t.Errorf("min_words = %d, want default 15", r.Paragraph.MinWords)
	}
	if r.Geometry.PageContentHeight != 727.2 {
		t.Errorf("page_content_height = %v, want default", r.Geometry.PageContentHeight)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	if err := os.WriteFile(path, []byte("patterns = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("malformed file error = %T (%v), want *ConfigError", err, err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"no patterns", func(r *Rules) { r.Patterns = nil }},
		{"empty sequence", func(r *Rules) { r.Patterns["bad"] = nil }},
		{"unknown tag", func(r *Rules) { r.Patterns["bad"] = []string{"chapter"} }},
		{"duplicate sequence", func(r *Rules) { r.Patterns["dup"] = []string{"paragraph"} }},
		{"zero sentences", func(r *Rules) { r.Paragraph.MinSentences = 0 }},
		{"zero words", func(r *Rules) { r.Paragraph.MinWords = 0 }},
		{"negative page height", func(r *Rules) { r.Geometry.PageContentHeight = -1 }},
		{"zero char width", func(r *Rules) { r.Geometry.AvgCharWidth = 0 }},
		{"zero word run", func(r *Rules) { r.Detection.MinWordRun = 0 }},
		{"zero attempts", func(r *Rules) { r.Reflow.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default()
			tt.mutate(&r)
			err := r.Validate()
			if err == nil {
				t.Fatal("invalid catalog passed validation")
			}
			if _, ok := err.(*ConfigError); !ok {
				t.Fatalf("error = %T, want *ConfigError", err)
			}
		})
	}
}

func TestPatternNamesSorted(t *testing.T) {
	names := Default().PatternNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
