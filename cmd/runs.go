package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/crunchy-cli/internal/store"
)

var runsDB string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored enrichment runs",
	Long:  "Commands for listing runs and the contacts they produced. Requires a results database (--db or store.database_url).",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrichment runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openRunsStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		segment, _ := cmd.Flags().GetString("segment")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Segment: segment,
			Status:  store.RunStatus(status),
			Limit:   limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its contacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openRunsStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		contacts, err := st.ListContacts(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show contacts")
		}

		formatRunDetail(os.Stdout, run, contacts)
		return nil
	},
}

func openRunsStore(cmd *cobra.Command) (store.Store, error) {
	path := runsDB
	if path == "" {
		path = cfg.Store.DatabaseURL
	}
	if path == "" {
		return nil, eris.New("runs: no results database (set --db or store.database_url)")
	}
	return openStore(cmd.Context(), path)
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSEGMENT\tWORKFLOW\tSTATUS\tENRICHED\tERRORS\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t------\t--------\t------\t-------\t--------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.Segment,
			r.Workflow,
			r.Status,
			r.Summary.Enrichments,
			r.Summary.Errors,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String(),
		)
	}
	_ = w.Flush()
}

// formatRunDetail writes one run's summary followed by its contacts.
func formatRunDetail(out io.Writer, r *store.Run, contacts []store.Contact) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", r.ID)
	_, _ = fmt.Fprintf(w, "Segment:\t%s\n", r.Segment)
	_, _ = fmt.Fprintf(w, "Workflow:\t%s\n", r.Workflow)
	_, _ = fmt.Fprintf(w, "Input:\t%s\n", r.Input)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", r.Status)
	_, _ = fmt.Fprintf(w, "Enrichments:\t%d\n", r.Summary.Enrichments)
	_, _ = fmt.Fprintf(w, "Errors:\t%d\n", r.Summary.Errors)
	_, _ = fmt.Fprintf(w, "Directory calls:\t%d\n", r.Summary.DirectoryCalls)
	_, _ = fmt.Fprintf(w, "LLM calls:\t%d\n", r.Summary.LLMCalls)
	if pct, ok := r.Summary.SuccessRate(); ok {
		_, _ = fmt.Fprintf(w, "Success rate:\t%d%%\n", pct)
	}
	_ = w.Flush()

	if len(contacts) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COMPANY\tNAME\tTITLE\tEMAIL")
	_, _ = fmt.Fprintln(w, "-------\t----\t-----\t-----")
	for _, c := range contacts {
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n", c.Company, c.FirstName, c.LastName, c.Title, c.Email)
	}
	_ = w.Flush()
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDB, "db", "", "SQLite results database (default store.database_url)")

	runsListCmd.Flags().String("segment", "", "filter by segment")
	runsListCmd.Flags().String("status", "", "filter by status (running, complete, failed)")
	runsListCmd.Flags().Int("limit", 20, "max runs to show")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
