package enrich

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

// --- Directory Mock ---

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) SearchOrganizations(ctx context.Context, req apollo.OrganizationSearchRequest) (*apollo.OrganizationSearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apollo.OrganizationSearchResponse), args.Error(1)
}

func (m *mockDirectory) SearchPeople(ctx context.Context, req apollo.PeopleSearchRequest) (*apollo.PeopleSearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apollo.PeopleSearchResponse), args.Error(1)
}

func (m *mockDirectory) MatchPerson(ctx context.Context, id string) (*apollo.PersonMatchResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apollo.PersonMatchResponse), args.Error(1)
}

// --- TitleMatcher Mock ---

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) BestTitle(ctx context.Context, candidates, priorities []string) (string, error) {
	args := m.Called(ctx, candidates, priorities)
	return args.String(0), args.Error(1)
}

// --- Helpers ---

func newTestRunContext(titles ...string) (*pipeline.RunContext, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	rc := pipeline.NewRunContext(pipeline.RunConfig{
		Segment:   "SeedSmall",
		Workflow:  "crunchy",
		Titles:    titles,
		TotalRows: 1,
	}, zap.New(core))
	return rc, logs
}

func record(values map[pipeline.Field]any) pipeline.Record {
	return pipeline.NewRecord(values)
}

func orgs(items ...apollo.Organization) *apollo.OrganizationSearchResponse {
	return &apollo.OrganizationSearchResponse{Accounts: []apollo.Account{}, Organizations: items}
}

func person(id, title string, hasEmail bool) apollo.Person {
	return apollo.Person{ID: id, FirstName: "First " + id, Title: title, HasEmail: hasEmail}
}
