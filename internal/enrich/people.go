package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

// PeopleFetcher loads the contactable people of an organization. It searches
// by the priority titles first and falls back to broad seniorities when no
// one with an email turns up.
type PeopleFetcher struct {
	dir apollo.Client
}

// NewPeopleFetcher creates the people stage.
func NewPeopleFetcher(dir apollo.Client) *PeopleFetcher {
	return &PeopleFetcher{dir: dir}
}

// Name implements pipeline.Stage.
func (s *PeopleFetcher) Name() string { return "people" }

// Requires implements pipeline.Stage.
func (s *PeopleFetcher) Requires() []pipeline.Field {
	return []pipeline.Field{FieldOrganizationName, FieldOrganizationID}
}

// Provides implements pipeline.Stage.
func (s *PeopleFetcher) Provides() []pipeline.Field {
	return []pipeline.Field{FieldPeople}
}

// Process implements pipeline.Stage.
func (s *PeopleFetcher) Process(ctx context.Context, in pipeline.Record, rc *pipeline.RunContext) (pipeline.Record, error) {
	name := in.String(FieldOrganizationName)
	orgID := in.String(FieldOrganizationID)

	people, err := s.search(ctx, rc, name, apollo.PeopleSearchRequest{
		OrganizationID:       orgID,
		Titles:               rc.Titles(),
		IncludeSimilarTitles: true,
	})
	if err != nil {
		return pipeline.Record{}, err
	}

	if len(people) == 0 {
		rc.Log.Debug("no titled contacts, widening to seniorities", zap.String("company", name))
		people, err = s.search(ctx, rc, name, apollo.PeopleSearchRequest{
			OrganizationID: orgID,
			Seniorities:    apollo.BroadSeniorities,
		})
		if err != nil {
			return pipeline.Record{}, err
		}
	}

	if len(people) == 0 {
		return pipeline.Record{}, rc.Fail(pipeline.KindContactNotFound, "could not find anyone for %s", name)
	}
	return in.With(FieldPeople, people)
}

// search runs one people search and keeps only people with an email.
func (s *PeopleFetcher) search(ctx context.Context, rc *pipeline.RunContext, name string, req apollo.PeopleSearchRequest) ([]apollo.Person, error) {
	rc.Tracker.IncDirectoryCalls()
	resp, err := s.dir.SearchPeople(ctx, req)
	if err != nil {
		return nil, pipeline.External(err, "people search for %s", name)
	}

	out := make([]apollo.Person, 0, len(resp.People))
	for _, p := range resp.People {
		if p.HasEmail {
			out = append(out, p)
		}
	}
	return out, nil
}
