package enrich

import (
	"context"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// Normalize maps lender-list columns onto the columns the organization
// resolver reads.
type Normalize struct{}

// Name implements pipeline.Stage.
func (Normalize) Name() string { return "normalize" }

// Requires implements pipeline.Stage.
func (Normalize) Requires() []pipeline.Field {
	return []pipeline.Field{FieldCompanyEmailName, FieldCompanyCity}
}

// Provides implements pipeline.Stage.
func (Normalize) Provides() []pipeline.Field {
	return []pipeline.Field{FieldOrganizationName, FieldHeadquarters}
}

// Process implements pipeline.Stage.
func (Normalize) Process(_ context.Context, in pipeline.Record, _ *pipeline.RunContext) (pipeline.Record, error) {
	return in.Merge(pipeline.NewRecord(map[pipeline.Field]any{
		FieldOrganizationName: in.String(FieldCompanyEmailName),
		FieldHeadquarters:     in.String(FieldCompanyCity),
	}))
}
