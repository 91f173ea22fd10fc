package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

func orgRecord() pipeline.Record {
	return record(map[pipeline.Field]any{
		FieldOrganizationName: "Acme Inc",
		FieldOrganizationID:   "org_1",
	})
}

var titledReq = apollo.PeopleSearchRequest{
	OrganizationID:       "org_1",
	Titles:               []string{"CEO", "CTO"},
	IncludeSimilarTitles: true,
}

var broadReq = apollo.PeopleSearchRequest{
	OrganizationID: "org_1",
	Seniorities:    apollo.BroadSeniorities,
}

func TestPeopleFetcher_KeepsOnlyContactable(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("SearchPeople", mock.Anything, titledReq).Return(&apollo.PeopleSearchResponse{People: []apollo.Person{
		person("p1", "CTO", true),
		person("p2", "CEO", false),
		person("p3", "Sales Rep", true),
	}}, nil).Once()

	rc, _ := newTestRunContext("CEO", "CTO")
	out, err := NewPeopleFetcher(dir).Process(context.Background(), orgRecord(), rc)
	require.NoError(t, err)

	people, ok := pipeline.Get[[]apollo.Person](out, FieldPeople)
	require.True(t, ok)
	require.Len(t, people, 2)
	assert.Equal(t, "p1", people[0].ID)
	assert.Equal(t, "p3", people[1].ID)
	assert.Equal(t, int64(1), rc.Tracker.Snapshot().DirectoryCalls)
	dir.AssertExpectations(t)
}

func TestPeopleFetcher_FallsBackToSeniorities(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("SearchPeople", mock.Anything, titledReq).Return(&apollo.PeopleSearchResponse{People: []apollo.Person{
		person("p1", "CTO", false),
	}}, nil).Once()
	dir.On("SearchPeople", mock.Anything, broadReq).Return(&apollo.PeopleSearchResponse{People: []apollo.Person{
		person("p9", "Founder", true),
	}}, nil).Once()

	rc, _ := newTestRunContext("CEO", "CTO")
	out, err := NewPeopleFetcher(dir).Process(context.Background(), orgRecord(), rc)
	require.NoError(t, err)

	people, _ := pipeline.Get[[]apollo.Person](out, FieldPeople)
	require.Len(t, people, 1)
	assert.Equal(t, "p9", people[0].ID)
	assert.Equal(t, int64(2), rc.Tracker.Snapshot().DirectoryCalls)
	dir.AssertExpectations(t)
}

func TestPeopleFetcher_ContactNotFound(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("SearchPeople", mock.Anything, mock.Anything).Return(&apollo.PeopleSearchResponse{People: []apollo.Person{}}, nil).Twice()

	rc, _ := newTestRunContext("CEO", "CTO")
	_, err := NewPeopleFetcher(dir).Process(context.Background(), orgRecord(), rc)
	require.Error(t, err)
	assert.True(t, pipeline.IsKind(err, pipeline.KindContactNotFound))
	assert.Contains(t, err.Error(), "could not find anyone for Acme Inc")
	assert.Equal(t, int64(2), rc.Tracker.Snapshot().DirectoryCalls)
}

func TestPeopleFetcher_ExternalFailure(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("SearchPeople", mock.Anything, titledReq).
		Return(nil, &apollo.APIError{Op: "search people", StatusCode: 401, Body: "bad key"}).Once()

	rc, _ := newTestRunContext("CEO", "CTO")
	_, err := NewPeopleFetcher(dir).Process(context.Background(), orgRecord(), rc)
	require.Error(t, err)
	assert.True(t, pipeline.IsKind(err, pipeline.KindExternalService))
	dir.AssertNumberOfCalls(t, "SearchPeople", 1)
}
