// Package commands holds the extra subcommands mounted on the PocketBase
// root command.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"quotebuilder/services"
)

// NewExportCommand returns "export <id|number>", which writes a saved quote
// to disk through the same engine the web downloads use.
func NewExportCommand(app core.App, engine *services.ExportEngine) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:          "export <quote id or number>",
		Short:        "Export a saved quote as pdf, docx or xlsx",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := services.ParseExportFormat(format)
			if err != nil {
				return err
			}
			doc, err := findQuote(app, args[0])
			if err != nil {
				return err
			}

			result, err := engine.Export(cmd.Context(), f, doc)
			if err != nil {
				var exportErr *services.ExportError
				if errors.As(err, &exportErr) {
					return fmt.Errorf("%s (%w)", exportErr.UserMessage(), exportErr.Err)
				}
				return err
			}

			path := out
			if path == "" {
				path = result.Filename
			}
			if err := os.WriteFile(path, result.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			report(cmd.OutOrStdout(), doc, result, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(services.FormatPDF), "output format: pdf, docx or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: the download name, e.g. quote-acme.pdf)")
	return cmd
}

// findQuote accepts either the record id or the display number.
func findQuote(app core.App, ref string) (services.QuoteDocument, error) {
	doc, err := services.LoadQuote(app, ref)
	if err == nil || !errors.Is(err, services.ErrQuoteNotFound) {
		return doc, err
	}
	rec, findErr := app.FindFirstRecordByData("quotes", "number", ref)
	if findErr != nil {
		return services.QuoteDocument{}, fmt.Errorf("quote %q not found", ref)
	}
	return services.LoadQuote(app, rec.Id)
}

func report(w io.Writer, doc services.QuoteDocument, result *services.ExportResult, path string) {
	if result.Pages > 0 {
		fmt.Fprintf(w, "%s: wrote %s (%d pages)\n", doc.Number, path, result.Pages)
		return
	}
	fmt.Fprintf(w, "%s: wrote %s\n", doc.Number, path)
}
