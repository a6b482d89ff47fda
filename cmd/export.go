package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ridedash/internal/export"
)

// exportCmd writes one ride to a file.
var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a ride as text, Parquet or JSON",
	Long: `Export a stored ride.

Formats:
  txt      ride summary followed by per-sample stream rows
  parquet  one row per sample, absent readings are null
  json     ride summary and computed metrics

The output file defaults to the sanitized ride name. Use --out - for stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ride id %q", args[0])
		}
		format, err := export.ParseFormat(flags.format)
		if err != nil {
			return err
		}

		q, _, closeDB, err := offlineQuery(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		detail, err := q.RideDetail(id)
		if err != nil {
			return err
		}

		out := flags.out
		if out == "" {
			out = export.Filename(detail.Summary.Name, format)
		}
		if out == "-" {
			return export.Write(cmd.OutOrStdout(), format, export.FromDetail(detail))
		}

		if err := writeFile(out, func(w io.Writer) error {
			return export.Write(w, format, export.FromDetail(detail))
		}); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return err
	},
}

// writeFile creates path and removes it again if write fails
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
