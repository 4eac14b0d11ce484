package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/oneshot/internal/history"
	"github.com/wesleyorama2/oneshot/internal/output"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exchanges from a journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			limit, _ := cmd.Flags().GetInt("limit")
			format, _ := cmd.Flags().GetString("output")

			outputFormat, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			store, err := history.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outputFormat {
			case output.FormatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			case output.FormatYAML:
				enc := yaml.NewEncoder(out)
				if err := enc.Encode(entries); err != nil {
					return err
				}
				return enc.Close()
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No exchanges recorded.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tMETHOD\tSTATUS\tELAPSED\tSIZE\tURI")
			for _, e := range entries {
				status := fmt.Sprint(e.Status)
				if e.Error != "" {
					status = "error"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					humanize.Time(e.CreatedAt), e.Method, status,
					e.Elapsed.Round(time.Microsecond), humanize.Bytes(uint64(e.BodySize)), e.URI)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("db", "oneshot-history.db", "Journal database path")
	cmd.Flags().Int("limit", 20, "Maximum number of exchanges to list")
	return cmd
}
