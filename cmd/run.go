package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/crunchy-cli/internal/batch"
	"github.com/sells-group/crunchy-cli/internal/enrich"
	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/internal/records"
	"github.com/sells-group/crunchy-cli/internal/store"
)

// runOptions are the resolved inputs of one batch run.
type runOptions struct {
	Input       string
	Segment     string
	Workflow    string
	Output      string
	OutputDir   string
	Format      string
	Concurrency int
	Limit       int
}

// runOutcome reports what a batch run produced.
type runOutcome struct {
	RunID      string
	OutputPath string
	Written    int
	Dropped    int
	Result     *batch.Result
}

var (
	runInput       string
	runSegment     string
	runWorkflow    string
	runOutput      string
	runFormat      string
	runConcurrency int
	runLimit       int
	runDB          string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich every company in an input file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if runFormat != "" {
			cfg.Run.Format = runFormat
		}
		if runConcurrency > 0 {
			cfg.Run.Concurrency = runConcurrency
		}
		dbPath := runDB
		if dbPath == "" {
			dbPath = cfg.Store.DatabaseURL
		}

		env, err := initEnv(ctx, "run", dbPath)
		if err != nil {
			return err
		}
		defer env.Close()

		segment := runSegment
		if segment == "" {
			segment = cfg.Run.Segment
		}
		workflow := runWorkflow
		if workflow == "" {
			workflow = cfg.Run.Workflow
		}

		out, err := runEnrichment(ctx, env, runOptions{
			Input:       runInput,
			Segment:     segment,
			Workflow:    workflow,
			Output:      runOutput,
			OutputDir:   cfg.Run.OutputDir,
			Format:      cfg.Run.Format,
			Concurrency: cfg.Run.Concurrency,
			Limit:       runLimit,
		})
		if out != nil {
			zap.L().Info("run complete",
				zap.String("run_id", out.RunID),
				zap.String("output", out.OutputPath),
				zap.Int("written", out.Written),
				zap.Int("dropped_rows", out.Dropped),
			)
		}
		return err
	},
}

// runEnrichment loads the input, threads every record through the segment's
// workflow and writes the surviving records. Output is written even when the
// run is cancelled part way through.
func runEnrichment(ctx context.Context, env *enrichEnv, opts runOptions) (*runOutcome, error) {
	if opts.Input == "" {
		return nil, eris.New("run: --input is required")
	}
	seg, err := env.Segments.Lookup(opts.Segment)
	if err != nil {
		return nil, err
	}

	name := opts.Workflow
	if name == "" {
		name = seg.Workflow
	}
	if name == "" {
		name = enrich.WorkflowCrunchy
	}
	wf, err := enrich.Lookup(name)
	if err != nil {
		return nil, err
	}
	p := wf.Pipeline(env.Deps)
	if err := wf.Validate(p); err != nil {
		return nil, eris.Wrap(err, "run")
	}

	in, err := records.Load(opts.Input, wf.Input)
	if err != nil {
		return nil, err
	}
	total := in.Total()
	if opts.Limit > 0 && opts.Limit < total {
		total = opts.Limit
	}

	rc := pipeline.NewRunContext(pipeline.RunConfig{
		Segment:   seg.Name,
		Workflow:  wf.Name,
		Titles:    seg.Titles,
		Options:   seg.Options,
		TotalRows: total,
	}, zap.L())

	if env.Store != nil {
		if _, err := env.Store.CreateRun(ctx, store.Run{
			ID:       rc.ID,
			Segment:  seg.Name,
			Workflow: wf.Name,
			Input:    opts.Input,
		}); err != nil {
			return nil, err
		}
	}

	res, runErr := batch.Run(ctx, p, in.Records, rc, batch.Options{
		Concurrency: opts.Concurrency,
		Limit:       opts.Limit,
		Label:       wf.Label,
	})
	if res == nil {
		return nil, runErr
	}

	format := opts.Format
	if format == "" {
		format = records.FormatCSV
	}
	path := opts.Output
	if path == "" {
		path = records.DefaultOutputPath(opts.OutputDir, opts.Input, format, time.Now())
	}
	if err := records.WriteFile(path, format, wf.Output, res.Records); err != nil {
		return nil, err
	}

	out := &runOutcome{
		RunID:      rc.ID,
		OutputPath: path,
		Written:    len(res.Records),
		Dropped:    in.Dropped,
		Result:     res,
	}

	if env.Store != nil {
		// The run's own context may already be cancelled.
		ctx := context.WithoutCancel(ctx)
		if _, err := env.Store.SaveContacts(ctx, rc.ID, wf.Output, res.Records); err != nil {
			return out, err
		}
		status := store.RunStatusComplete
		if runErr != nil {
			status = store.RunStatusFailed
		}
		if err := env.Store.CompleteRun(ctx, rc.ID, status, res.Summary); err != nil {
			return out, err
		}
	}

	return out, runErr
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "input file, .csv or .xlsx (required)")
	runCmd.Flags().StringVar(&runSegment, "segment", "", "segment name (default from config)")
	runCmd.Flags().StringVar(&runWorkflow, "workflow", "", "workflow name, crunchy or lendbae (default from segment)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output file (default PROCESSED_<timestamp>_<input> in run.output_dir)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format, csv or json (default from config)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "records in flight (default from config)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "process at most this many records (0 = all)")
	runCmd.Flags().StringVar(&runDB, "db", "", "SQLite results database (default store.database_url)")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
