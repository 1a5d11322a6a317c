package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docreflow",
	Short: "Keep related DOCX content together across page breaks",
	Long: `docreflow classifies a document's paragraphs, finds content that must
stay together (a heading and its first paragraph, a heading and its list),
checks where it actually lands in the rendered output, and inserts blank
paragraphs until each group fits on a single page.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
