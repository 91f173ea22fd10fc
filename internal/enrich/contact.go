package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

// TitleMatcher picks the candidate title that best fits the priority list.
// An empty result means the matcher could not choose.
type TitleMatcher interface {
	BestTitle(ctx context.Context, candidates, priorities []string) (string, error)
}

// ContactSelector picks one person from the candidates found for an
// organization:
//  1. a single candidate is taken as is
//  2. otherwise the first priority title with an exact (trimmed,
//     case-insensitive) candidate match wins
//  3. otherwise the title matcher chooses among the candidate titles
type ContactSelector struct {
	matcher TitleMatcher
}

// NewContactSelector creates the selector stage.
func NewContactSelector(matcher TitleMatcher) *ContactSelector {
	return &ContactSelector{matcher: matcher}
}

// Name implements pipeline.Stage.
func (s *ContactSelector) Name() string { return "best_contact" }

// Requires implements pipeline.Stage.
func (s *ContactSelector) Requires() []pipeline.Field {
	return []pipeline.Field{FieldOrganizationName, FieldPeople}
}

// Provides implements pipeline.Stage.
func (s *ContactSelector) Provides() []pipeline.Field {
	return []pipeline.Field{FieldBestContactID}
}

// Process implements pipeline.Stage.
func (s *ContactSelector) Process(ctx context.Context, in pipeline.Record, rc *pipeline.RunContext) (pipeline.Record, error) {
	name := in.String(FieldOrganizationName)

	people, ok := pipeline.Get[[]apollo.Person](in, FieldPeople)
	if !ok {
		return pipeline.Record{}, rc.Fail(pipeline.KindData, "candidate list missing for %s", name)
	}
	if len(people) == 0 {
		return pipeline.Record{}, rc.Fail(pipeline.KindSelection, "no candidates to choose from at %s", name)
	}

	id, err := s.selectContact(ctx, rc, name, people)
	if err != nil {
		return pipeline.Record{}, err
	}
	return in.With(FieldBestContactID, id)
}

func (s *ContactSelector) selectContact(ctx context.Context, rc *pipeline.RunContext, name string, people []apollo.Person) (string, error) {
	if len(people) == 1 {
		if people[0].ID == "" {
			return "", rc.Fail(pipeline.KindSelection, "single candidate at %s has no id", name)
		}
		return people[0].ID, nil
	}

	priorities := rc.Titles()
	for _, title := range priorities {
		if p, ok := findByTitle(people, title); ok {
			return p.ID, nil
		}
	}

	candidates := make([]string, len(people))
	for i, p := range people {
		candidates[i] = p.Title
	}

	rc.Tracker.IncLLMCalls()
	best, err := s.matcher.BestTitle(ctx, candidates, priorities)
	if err != nil {
		return "", pipeline.External(err, "title match for %s", name)
	}

	p, ok := findByTitle(people, best)
	if strings.TrimSpace(best) == "" || !ok {
		rc.Log.Debug("title matcher gave no usable title",
			zap.String("company", name),
			zap.String("best_title", best),
		)
		return "", rc.Fail(pipeline.KindSelection, "could not find an appropriate contact at %s", name)
	}
	return p.ID, nil
}

// findByTitle returns the first person with an id whose title equals title,
// ignoring case and surrounding whitespace.
func findByTitle(people []apollo.Person, title string) (apollo.Person, bool) {
	want := normalizeTitle(title)
	for _, p := range people {
		if p.ID != "" && normalizeTitle(p.Title) == want {
			return p, true
		}
	}
	return apollo.Person{}, false
}

func normalizeTitle(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
