// Package batch runs a pipeline over every record of an input file.
package batch

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// Options tunes a batch run.
type Options struct {
	// Concurrency is the number of records in flight. Values below 1 run
	// records one at a time.
	Concurrency int
	// Limit caps the number of records processed; 0 means all.
	Limit int
	// Label is the field used to name a record in progress logs.
	Label pipeline.Field
}

// Result holds the records that completed every stage, in input order.
type Result struct {
	Records []pipeline.Record
	Failed  int
	Summary pipeline.Summary
}

// Run threads each record through p. A failing record is logged and skipped;
// it never stops the batch. The run summary is logged once all records are
// done. Run returns an error only for an invalid pipeline or a cancelled
// context, in which case the records finished so far are still returned.
func Run(ctx context.Context, p *pipeline.Pipeline, recs []pipeline.Record, rc *pipeline.RunContext, opts Options) (*Result, error) {
	if err := p.Err(); err != nil {
		return nil, eris.Wrap(err, "batch: invalid pipeline")
	}

	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	total := rc.TotalRows()
	if total <= 0 || total > len(recs) {
		total = len(recs)
	}

	rc.Info("batch: starting run",
		zap.Strings("stages", p.StageNames()),
		zap.Int("records", len(recs)),
		zap.Int("concurrency", concurrency),
	)

	done := make([]pipeline.Record, len(recs))
	ok := make([]bool, len(recs))
	failed := make([]bool, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, rec := range recs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Cancelled while waiting for a slot: never attempted.
			if gctx.Err() != nil {
				return nil
			}
			name := rec.String(opts.Label)
			rc.Info(fmt.Sprintf("(%d/%d) Starting enrichment for %s...", i+1, total, name))

			out, err := p.Run(gctx, rec, rc)
			if err != nil {
				failed[i] = true
				rc.Warn("batch: record skipped",
					zap.String("company", name),
					zap.String("kind", string(pipeline.KindOf(err))),
				)
				return nil // a bad record never aborts the batch
			}

			done[i] = out
			ok[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch: run")
	}

	res := &Result{}
	for i := range done {
		if ok[i] {
			res.Records = append(res.Records, done[i])
		}
		if failed[i] {
			res.Failed++
		}
	}
	res.Summary = rc.Tracker.LogSummary(rc.Log)

	if err := ctx.Err(); err != nil {
		return res, eris.Wrap(err, "batch: cancelled")
	}
	return res, nil
}
