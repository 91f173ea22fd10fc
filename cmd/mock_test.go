package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crunchy-cli/internal/config"
	"github.com/sells-group/crunchy-cli/internal/enrich"
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

// acmeDirectory resolves acme.io to org_1 whose only emailable person is a
// CTO named Ada Lovelace.
func acmeDirectory() *mockDirectory {
	dir := &mockDirectory{}
	dir.On("SearchOrganizations", mock.Anything, apollo.OrganizationSearchRequest{Domains: []string{"acme.io"}}).
		Return(&apollo.OrganizationSearchResponse{Organizations: []apollo.Organization{
			{ID: "org_1", Name: "Acme", PrimaryDomain: "acme.io"},
		}}, nil)
	dir.On("SearchPeople", mock.Anything, mock.MatchedBy(func(req apollo.PeopleSearchRequest) bool {
		return req.OrganizationID == "org_1"
	})).Return(&apollo.PeopleSearchResponse{People: []apollo.Person{
		{ID: "p1", FirstName: "Ada", Title: "CTO", HasEmail: true},
	}}, nil)
	dir.On("MatchPerson", mock.Anything, "p1").Return(&apollo.PersonMatchResponse{Person: apollo.PersonDetail{
		ID: "p1", FirstName: "Ada", LastName: "Lovelace", Title: "CTO", Email: "ada@acme.io",
	}}, nil)
	return dir
}

func newTestEnv(t *testing.T, dir apollo.Client, m enrich.TitleMatcher) *enrichEnv {
	t.Helper()
	segs, err := config.DefaultSegments()
	require.NoError(t, err)
	return &enrichEnv{
		Deps:     enrich.Deps{Directory: dir, Matcher: m},
		Segments: segs,
	}
}

func writeInput(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

const crunchyHeader = "Organization Name,Organization Name URL,Last Funding Date,Last Funding Type,Number of Employees," +
	"Headquarters Location,Description,Last Funding Amount,Last Funding Amount Currency,Last Funding Amount (in USD)," +
	"Lead Investors,Website"
