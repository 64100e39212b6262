package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/visa-movement/bulletin-cli/internal/store"
)

var (
	statusLimit   int
	statusCommand string
	statusStatus  string
	statusRunID   string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent ingest runs",
	Long: `List recent runs from the ingest ledger. With --run the documents
of a single run are shown instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if statusRunID != "" {
			docs, err := st.ListDocuments(ctx, statusRunID)
			if err != nil {
				return eris.Wrap(err, "status")
			}
			if len(docs) == 0 {
				fmt.Fprintln(os.Stderr, "No documents found.")
				return nil
			}
			formatDocuments(cmd.OutOrStdout(), docs)
			return nil
		}

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:  store.RunStatus(statusStatus),
			Command: statusCommand,
			Limit:   statusLimit,
		})
		if err != nil {
			return eris.Wrap(err, "status")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "maximum runs to list")
	statusCmd.Flags().StringVar(&statusCommand, "command", "", "filter by command: scrape, update, dol")
	statusCmd.Flags().StringVar(&statusStatus, "status", "", "filter by status: running, complete, failed")
	statusCmd.Flags().StringVar(&statusRunID, "run", "", "show documents of one run")
	rootCmd.AddCommand(statusCmd)
}

func formatRuns(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMMAND\tSTATUS\tSTARTED\tDURATION\tDETAIL")
	_, _ = fmt.Fprintln(w, "--\t-------\t------\t-------\t--------\t------")

	for _, r := range runs {
		dur := ""
		if r.FinishedAt != nil {
			dur = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Command,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04"),
			dur,
			r.Detail,
		)
	}
	_ = w.Flush()
}

func formatDocuments(out io.Writer, docs []store.Document) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MONTH\tSTATUS\tFETCHED\tERROR")
	_, _ = fmt.Fprintln(w, "-----\t------\t-------\t-----")

	for _, d := range docs {
		errText := d.Error
		if len(errText) > 60 {
			errText = errText[:57] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.Month,
			d.Status,
			d.FetchedAt.Format("2006-01-02 15:04"),
			errText,
		)
	}
	_ = w.Flush()
}

// truncateID shortens a UUID to its first segment for table display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
