package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/signalforge/datamart/internal/catalog"
	"github.com/signalforge/datamart/internal/model"
)

var (
	catalogFormat string
	catalogOut    string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List currently sellable product files",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline()
		if err != nil {
			return err
		}

		entries, err := env.Builder.Build()
		if err != nil {
			return eris.Wrap(err, "build catalog")
		}

		switch catalogFormat {
		case "table":
			if len(entries) == 0 {
				fmt.Fprintln(os.Stderr, "No products materialized yet. Run `datamart update` first.")
				return nil
			}
			formatCatalog(os.Stdout, entries)
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(entries); err != nil {
				return eris.Wrap(err, "encode catalog")
			}
		case "xlsx":
			out := catalogOut
			if out == "" {
				out = "catalog.xlsx"
			}
			if err := catalog.ExportXLSX(entries, out); err != nil {
				return err
			}
			fmt.Printf("Wrote %d products to %s\n", len(entries), out)
		default:
			return eris.Errorf("unknown format %q (valid: table, json, xlsx)", catalogFormat)
		}
		return nil
	},
}

func formatCatalog(w io.Writer, entries []model.CatalogEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tPERIOD\tFILE\tROWS\tSIZE\tPRICE")
	for _, e := range entries {
		rows := fmt.Sprintf("%d", e.Rows)
		if e.RowsEstimated {
			rows = "~" + rows
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t$%d\n",
			e.Tier, e.Period, e.Filename, rows, catalog.HumanSize(e.SizeBytes), e.Price)
	}
	tw.Flush()
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFormat, "format", "table", "output format: table, json, xlsx")
	catalogCmd.Flags().StringVar(&catalogOut, "out", "", "output path for xlsx export (default catalog.xlsx)")
	rootCmd.AddCommand(catalogCmd)
}
