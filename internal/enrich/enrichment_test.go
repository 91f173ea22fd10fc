package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

func adaMatch() *apollo.PersonMatchResponse {
	return &apollo.PersonMatchResponse{Person: apollo.PersonDetail{
		ID: "p1", FirstName: "Ada", LastName: "Lovelace", Title: "CTO", Email: "ada@acme.io",
	}}
}

func TestContactEnricher(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("MatchPerson", mock.Anything, "p1").Return(adaMatch(), nil).Once()

	rc, _ := newTestRunContext()
	in := record(map[pipeline.Field]any{FieldBestContactID: "p1", FieldOrganizationName: "Acme Inc"})
	out, err := NewContactEnricher(dir).Process(context.Background(), in, rc)
	require.NoError(t, err)

	assert.Equal(t, "Ada", out.String(FieldContactFirstName))
	assert.Equal(t, "Lovelace", out.String(FieldContactLastName))
	assert.Equal(t, "CTO", out.String(FieldContactTitle))
	assert.Equal(t, "ada@acme.io", out.String(FieldContactEmail))
	assert.Equal(t, "Acme Inc", out.String(FieldOrganizationName))

	s := rc.Tracker.Snapshot()
	assert.Equal(t, int64(1), s.DirectoryCalls)
	assert.Equal(t, int64(1), s.Enrichments)
}

func TestContactEnricher_Idempotent(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("MatchPerson", mock.Anything, "p1").Return(adaMatch(), nil).Times(3)

	rc, _ := newTestRunContext()
	stage := NewContactEnricher(dir)
	in := record(map[pipeline.Field]any{FieldBestContactID: "p1"})

	first, err := stage.Process(context.Background(), in, rc)
	require.NoError(t, err)
	second, err := stage.Process(context.Background(), in, rc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Re-enriching an already enriched record agrees with itself.
	again, err := stage.Process(context.Background(), first, rc)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestContactEnricher_ExternalFailure(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("MatchPerson", mock.Anything, "p1").Return(nil, errors.New("connection reset")).Once()

	rc, _ := newTestRunContext()
	_, err := NewContactEnricher(dir).Process(context.Background(), record(map[pipeline.Field]any{FieldBestContactID: "p1"}), rc)
	require.Error(t, err)
	assert.True(t, pipeline.IsKind(err, pipeline.KindExternalService))
	assert.Contains(t, err.Error(), "connection reset")

	s := rc.Tracker.Snapshot()
	assert.Equal(t, int64(1), s.DirectoryCalls)
	assert.Equal(t, int64(0), s.Enrichments)
}
