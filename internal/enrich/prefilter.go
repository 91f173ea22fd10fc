package enrich

import (
	"context"
	"strings"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// PreFilter drops funding-round rows that cannot produce a usable outreach
// line: no website, or missing the funding amount or lead investor the
// segment asks for.
type PreFilter struct{}

// Name implements pipeline.Stage.
func (PreFilter) Name() string { return "prefilter" }

// Requires implements pipeline.Stage.
func (PreFilter) Requires() []pipeline.Field {
	return []pipeline.Field{FieldOrganizationName, FieldLastFundingAmount, FieldLeadInvestors, FieldWebsite}
}

// Provides implements pipeline.Stage.
func (PreFilter) Provides() []pipeline.Field { return nil }

// Process implements pipeline.Stage.
func (PreFilter) Process(_ context.Context, in pipeline.Record, rc *pipeline.RunContext) (pipeline.Record, error) {
	name := in.String(FieldOrganizationName)
	opts := rc.Options()

	if opts.NeedsFundingAmount && in.Float(FieldLastFundingAmount) <= 0 {
		return pipeline.Record{}, rc.Fail(pipeline.KindData, "Omitting %s - no funding amount", name)
	}
	if opts.NeedsLeadInvestor && strings.TrimSpace(in.String(FieldLeadInvestors)) == "" {
		return pipeline.Record{}, rc.Fail(pipeline.KindData, "Omitting %s - no lead investors", name)
	}
	if strings.TrimSpace(in.String(FieldWebsite)) == "" {
		return pipeline.Record{}, rc.Fail(pipeline.KindData, "Omitting %s - no website", name)
	}
	return in, nil
}
