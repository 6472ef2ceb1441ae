package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerissecure/protocols/docx"
	"github.com/aerissecure/protocols/roster"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print every table row of a document and the records extracted from it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := roster.ReadSource(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, t := range tables {
			fmt.Fprintf(out, "\n=== Table %d ===\n", i)
			for j, row := range t {
				fmt.Fprintf(out, "  Row %d: %q\n", j, row)
			}
		}

		records := roster.Extract(tables, cfg.Protocol.Source)
		fmt.Fprintf(out, "\n%d records\n", len(records))
		buckets := roster.Group(records, cfg.Protocol.Policy)
		for _, code := range buckets.Codes() {
			var names []string
			for _, r := range buckets.Records(code) {
				names = append(names, r.FullName)
			}
			fmt.Fprintf(out, "  program %s: %s\n", code, strings.Join(names, ", "))
		}
		return nil
	},
}

var previewOut string

var previewCmd = &cobra.Command{
	Use:   "preview <file.docx>",
	Short: "Render a document as HTML, marking unfilled placeholders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := docx.OpenDocumentModel(args[0])
		if err != nil {
			return err
		}
		if blanks := docx.Placeholders(m); len(blanks) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d unfilled placeholders\n", len(blanks))
		}
		html := docx.RenderDocumentHTML(m)
		if previewOut == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		}
		return os.WriteFile(previewOut, []byte(html), 0o644)
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "Write HTML to a file instead of stdout")
}
