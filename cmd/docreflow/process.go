package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tamzidan/docreflow/internal/pipeline"
	"github.com/tamzidan/docreflow/internal/render"
	"github.com/tamzidan/docreflow/internal/rules"
)

var (
	processRulesPath   string
	processOutput      string
	processReportPath  string
	processRenderer    string
	processRendererKey string
	processSkipRender  bool
	processSpacing     bool
)

var processCmd = &cobra.Command{
	Use:   "process <document.docx>",
	Short: "Reflow one document and write the result next to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVar(&processRulesPath, "rules", "", "rule catalog (TOML); defaults to "+defaultRulesPath())
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "output path (default: <input>.reflowed.docx)")
	processCmd.Flags().StringVar(&processReportPath, "report", "", "write the Markdown report to this path")
	processCmd.Flags().StringVar(&processRenderer, "renderer", "http://localhost:3000", "document renderer base URL")
	processCmd.Flags().StringVar(&processRendererKey, "renderer-key", "", "renderer API key (or RENDERER_API_KEY)")
	processCmd.Flags().BoolVar(&processSkipRender, "skip-render", false, "skip rendering; report groups without detection")
	processCmd.Flags().BoolVar(&processSpacing, "spacing", false, "normalize blank lines between blocks")
}

// defaultRulesPath is the per-user catalog location; a missing file there
// falls back to the built-in defaults.
func defaultRulesPath() string {
	return filepath.Join(xdg.ConfigHome, "docreflow", "rules.toml")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rulesPath := processRulesPath
	if rulesPath == "" {
		rulesPath = defaultRulesPath()
	}
	catalog, err := rules.LoadFile(rulesPath)
	if err != nil {
		return err
	}

	input, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var renderer render.Renderer
	var extractor render.Extractor
	if !processSkipRender {
		key := processRendererKey
		if key == "" {
			key = os.Getenv("RENDERER_API_KEY")
		}
		client := render.NewClient(processRenderer, key, 60*time.Second)
		defer client.Close()
		renderer = client
		extractor = render.NewPDFExtractor()
	}

	runner := pipeline.NewRunner(catalog, renderer, extractor, log)
	opts := pipeline.RunOptions{SkipRender: processSkipRender, Spacing: processSpacing}
	result, err := runner.Run(cmd.Context(), input, opts, nil)
	if err != nil {
		return err
	}

	outPath := processOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".reflowed.docx"
	}
	if err := os.WriteFile(outPath, result.Output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if processReportPath != "" {
		if err := os.WriteFile(processReportPath, []byte(result.Report.Markdown()), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	printSummary(result, outPath)
	return nil
}

func printSummary(result *pipeline.Result, outPath string) {
	rep := result.Report
	bold := color.New(color.Bold)
	bold.Printf("%s\n", outPath)
	fmt.Printf("  units: %d  groups: %d  splits: %d  breaks inserted: %d\n",
		rep.Units, len(rep.Groups), rep.SplitCount, rep.Breaks)

	switch rep.Status {
	case "completed":
		color.Green("  status: %s", rep.Status)
	case "detect_skipped":
		color.Yellow("  status: %s", rep.Status)
		if rep.RenderError != "" {
			color.Yellow("  renderer: %s", rep.RenderError)
		}
	default:
		color.Red("  status: %s", rep.Status)
		for _, g := range rep.Unresolved() {
			color.Red("  unresolved: %s on pages %v after %d attempts", g.Pattern, g.Pages, g.Attempts)
		}
	}
}
