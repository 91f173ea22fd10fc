package enrich

import (
	"context"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

// ContactEnricher reveals the chosen contact and adds the contact columns.
// A completed call counts as the record's enrichment.
type ContactEnricher struct {
	dir apollo.Client
}

// NewContactEnricher creates the enrichment stage.
func NewContactEnricher(dir apollo.Client) *ContactEnricher {
	return &ContactEnricher{dir: dir}
}

// Name implements pipeline.Stage.
func (s *ContactEnricher) Name() string { return "enrich_contact" }

// Requires implements pipeline.Stage.
func (s *ContactEnricher) Requires() []pipeline.Field {
	return []pipeline.Field{FieldBestContactID}
}

// Provides implements pipeline.Stage.
func (s *ContactEnricher) Provides() []pipeline.Field {
	return ContactFields
}

// Process implements pipeline.Stage.
func (s *ContactEnricher) Process(ctx context.Context, in pipeline.Record, rc *pipeline.RunContext) (pipeline.Record, error) {
	id := in.String(FieldBestContactID)

	rc.Tracker.IncDirectoryCalls()
	resp, err := s.dir.MatchPerson(ctx, id)
	if err != nil {
		return pipeline.Record{}, pipeline.External(err, "contact lookup for %s", id)
	}
	rc.Tracker.IncEnrichments()

	p := resp.Person
	return in.Merge(pipeline.NewRecord(map[pipeline.Field]any{
		FieldContactFirstName: p.FirstName,
		FieldContactLastName:  p.LastName,
		FieldContactTitle:     p.Title,
		FieldContactEmail:     p.Email,
	}))
}
