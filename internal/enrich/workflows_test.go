package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

func TestWorkflowsCompose(t *testing.T) {
	for _, name := range WorkflowNames() {
		t.Run(name, func(t *testing.T) {
			w, err := Lookup(name)
			require.NoError(t, err)

			p := w.Pipeline(Deps{Directory: &mockDirectory{}, Matcher: &mockMatcher{}})
			require.NoError(t, w.Validate(p))
			assert.Contains(t, w.Input.Fields(), w.Label)
		})
	}
}

func TestWorkflowValidate_Errors(t *testing.T) {
	echo := pipeline.StageFunc{
		StageName: "echo",
		In:        []pipeline.Field{"a"},
		Out:       []pipeline.Field{"b"},
		Fn: func(_ context.Context, in pipeline.Record, _ *pipeline.RunContext) (pipeline.Record, error) {
			return in, nil
		},
	}
	w := Workflow{Name: "test", Output: []pipeline.Field{"a", "b", "c"}}

	err := w.Validate(pipeline.New("a").Pipe(echo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `enrich: workflow test never produces output column "c"`)

	err = w.Validate(pipeline.New("x").Pipe(echo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrich: workflow test")
	assert.Contains(t, err.Error(), `stage "echo" requires fields not yet guaranteed: a`)

	w.Output = w.Output[:2]
	assert.NoError(t, w.Validate(pipeline.New("a").Pipe(echo)))
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("hubspot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown workflow "hubspot"`)
	assert.Equal(t, []string{"crunchy", "lendbae"}, WorkflowNames())
}

func crunchyRow() pipeline.Record {
	return record(crunchyValues())
}

func crunchyValues() map[pipeline.Field]any {
	return map[pipeline.Field]any{
		FieldOrganizationName:    "Acme Inc",
		FieldOrganizationURL:     "",
		FieldLastFundingDate:     "2025-01-15",
		FieldLastFundingType:     "Seed",
		FieldEmployees:           "11-50",
		FieldHeadquarters:        "Austin, TX",
		FieldDescription:         "Widgets",
		FieldLastFundingAmount:   2500000.0,
		FieldFundingCurrency:     "USD",
		FieldLastFundingAmountUS: 2500000.0,
		FieldLeadInvestors:       "Sequoia Capital",
		FieldWebsite:             "https://acme.io/about",
	}
}

func newCrunchyRun(t *testing.T) (*pipeline.RunContext, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	rc := pipeline.NewRunContext(pipeline.RunConfig{
		Segment:   "SeedSmall",
		Workflow:  WorkflowCrunchy,
		Titles:    []string{"CEO", "CTO"},
		Options:   pipeline.Options{NeedsFundingAmount: true, NeedsLeadInvestor: true},
		TotalRows: 1,
	}, zap.New(core))
	return rc, logs
}

func acmeDirectory(people ...apollo.Person) *mockDirectory {
	dir := &mockDirectory{}
	dir.On("SearchOrganizations", mock.Anything, domainReq).Return(orgs(apollo.Organization{
		ID: "org_1", WebsiteURL: "https://acme.io", PrimaryDomain: "acme.io",
	}), nil).Once()
	dir.On("SearchPeople", mock.Anything, titledReq).Return(&apollo.PeopleSearchResponse{People: people}, nil).Once()
	return dir
}

func TestCrunchyWorkflow_ExactTitle(t *testing.T) {
	dir := acmeDirectory(person("p1", "CTO", true), person("p2", "Sales Rep", true))
	dir.On("MatchPerson", mock.Anything, "p1").Return(adaMatch(), nil).Once()
	m := &mockMatcher{}

	w, err := Lookup(WorkflowCrunchy)
	require.NoError(t, err)
	rc, _ := newCrunchyRun(t)

	out, err := w.Pipeline(Deps{Directory: dir, Matcher: m}).Run(context.Background(), crunchyRow(), rc)
	require.NoError(t, err)

	assert.Equal(t, "org_1", out.String(FieldOrganizationID))
	assert.Equal(t, "p1", out.String(FieldBestContactID))
	assert.Equal(t, "Acme Inc", out.String(FieldCompanyName))
	assert.Equal(t, "2.5M", out.String(FieldFunding))
	assert.Equal(t, "seed", out.String(FieldFundingType))
	assert.Equal(t, "Sequoia Capital", out.String(FieldLeadInvestor))
	assert.Equal(t, "ada@acme.io", out.String(FieldContactEmail))

	s := rc.Tracker.Snapshot()
	assert.Equal(t, int64(3), s.DirectoryCalls)
	assert.Equal(t, int64(0), s.LLMCalls)
	assert.Equal(t, int64(1), s.Enrichments)
	assert.Equal(t, int64(0), s.Errors)
	m.AssertNotCalled(t, "BestTitle", mock.Anything, mock.Anything, mock.Anything)
	dir.AssertNumberOfCalls(t, "SearchOrganizations", 1)
	dir.AssertExpectations(t)
}

func TestCrunchyWorkflow_LLMPicksCandidate(t *testing.T) {
	dir := acmeDirectory(person("p1", "Office Manager", true), person("p2", "Sales Rep", true))
	dir.On("MatchPerson", mock.Anything, "p2").Return(&apollo.PersonMatchResponse{Person: apollo.PersonDetail{
		ID: "p2", FirstName: "Bob", LastName: "Smith", Title: "Sales Rep", Email: "bob@acme.io",
	}}, nil).Once()
	m := &mockMatcher{}
	m.On("BestTitle", mock.Anything, []string{"Office Manager", "Sales Rep"}, []string{"CEO", "CTO"}).Return("Sales Rep", nil).Once()

	w, _ := Lookup(WorkflowCrunchy)
	rc, _ := newCrunchyRun(t)

	out, err := w.Pipeline(Deps{Directory: dir, Matcher: m}).Run(context.Background(), crunchyRow(), rc)
	require.NoError(t, err)
	assert.Equal(t, "p2", out.String(FieldBestContactID))
	assert.Equal(t, "Bob", out.String(FieldContactFirstName))
	assert.Equal(t, int64(1), rc.Tracker.Snapshot().LLMCalls)
}

func TestCrunchyWorkflow_LLMUnmatchedTitle(t *testing.T) {
	dir := acmeDirectory(person("p1", "Office Manager", true), person("p2", "Sales Rep", true))
	m := &mockMatcher{}
	m.On("BestTitle", mock.Anything, mock.Anything, mock.Anything).Return("VP Sales", nil).Once()

	w, _ := Lookup(WorkflowCrunchy)
	rc, logs := newCrunchyRun(t)

	out, err := w.Pipeline(Deps{Directory: dir, Matcher: m}).Run(context.Background(), crunchyRow(), rc)
	require.Error(t, err)
	assert.True(t, pipeline.IsKind(err, pipeline.KindSelection))

	// The truncated record stops at the people stage.
	assert.True(t, out.Has(FieldPeople))
	assert.False(t, out.Has(FieldBestContactID))

	s := rc.Tracker.Snapshot()
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(0), s.Enrichments)
	dir.AssertNotCalled(t, "MatchPerson", mock.Anything, mock.Anything)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestCrunchyWorkflow_PreFilterStopsBeforeCalls(t *testing.T) {
	dir := &mockDirectory{}
	w, _ := Lookup(WorkflowCrunchy)
	rc, _ := newCrunchyRun(t)

	row := crunchyValues()
	row[FieldLeadInvestors] = ""
	_, err := w.Pipeline(Deps{Directory: dir, Matcher: &mockMatcher{}}).Run(context.Background(), pipeline.NewRecord(row), rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no lead investors")
	assert.Equal(t, int64(0), rc.Tracker.Snapshot().DirectoryCalls)
	dir.AssertNotCalled(t, "SearchOrganizations", mock.Anything, mock.Anything)
}

func TestLendBaeWorkflow(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("SearchOrganizations", mock.Anything, apollo.OrganizationSearchRequest{Domains: []string{"firstlending.com"}}).
		Return(orgs(apollo.Organization{ID: "org_fl", PrimaryDomain: "firstlending.com"}), nil).Once()
	dir.On("SearchPeople", mock.Anything, mock.Anything).Return(&apollo.PeopleSearchResponse{People: []apollo.Person{
		person("p1", "Operations Manager", true),
	}}, nil).Once()
	dir.On("MatchPerson", mock.Anything, "p1").Return(&apollo.PersonMatchResponse{Person: apollo.PersonDetail{
		ID: "p1", FirstName: "Cleo", LastName: "Park", Title: "Operations Manager", Email: "cleo@firstlending.com",
	}}, nil).Once()

	w, err := Lookup(WorkflowLendBae)
	require.NoError(t, err)
	rc := pipeline.NewRunContext(pipeline.RunConfig{
		Segment:  "LendBae",
		Workflow: WorkflowLendBae,
		Titles:   []string{"VP Operations", "Operations Manager"},
	}, zap.NewNop())

	in := record(map[pipeline.Field]any{
		FieldCompanyName:      "First Lending Co LLC",
		FieldCompanyEmailName: "First Lending",
		FieldWebsite:          "www.firstlending.com",
		FieldCompanyCity:      "Denver",
		FieldSICCodes:         "6162",
		FieldNAICSCodes:       "522292",
		FieldShortDescription: "Mortgage lender",
	})
	out, err := w.Pipeline(Deps{Directory: dir, Matcher: &mockMatcher{}}).Run(context.Background(), in, rc)
	require.NoError(t, err)

	assert.Equal(t, "org_fl", out.String(FieldOrganizationID))
	assert.Equal(t, "cleo@firstlending.com", out.String(FieldContactEmail))
	for _, f := range w.Output {
		assert.True(t, out.Has(f), "missing %q", f)
	}
	dir.AssertExpectations(t)
}
