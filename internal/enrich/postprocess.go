package enrich

import (
	"context"

	"github.com/sells-group/crunchy-cli/internal/format"
	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// FundingPostProcess adds the formatted columns of the funding-round output
// sheet.
type FundingPostProcess struct{}

// Name implements pipeline.Stage.
func (FundingPostProcess) Name() string { return "postprocess" }

// Requires implements pipeline.Stage.
func (FundingPostProcess) Requires() []pipeline.Field {
	return append([]pipeline.Field{
		FieldOrganizationName,
		FieldLastFundingAmountUS,
		FieldLastFundingType,
		FieldLeadInvestors,
		FieldWebsite,
	}, ContactFields...)
}

// Provides implements pipeline.Stage.
func (FundingPostProcess) Provides() []pipeline.Field {
	return []pipeline.Field{FieldCompanyName, FieldFunding, FieldFundingType, FieldLeadInvestor}
}

// Process implements pipeline.Stage.
func (FundingPostProcess) Process(_ context.Context, in pipeline.Record, _ *pipeline.RunContext) (pipeline.Record, error) {
	return in.Merge(pipeline.NewRecord(map[pipeline.Field]any{
		FieldCompanyName:  in.String(FieldOrganizationName),
		FieldFunding:      format.FundingAmount(in.Float(FieldLastFundingAmountUS)),
		FieldFundingType:  format.LowercaseFirst(in.String(FieldLastFundingType)),
		FieldLeadInvestor: format.LeadInvestor(in.String(FieldLeadInvestors)),
	}))
}
