package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

// OrganizationResolver finds the directory organization id of a company.
// Tiers, first hit wins:
//  1. search by website domain, accept only a domain-verified result
//  2. search by name + primary location, accept only a domain-verified result
//  3. first result of the tier 2 search
//  4. search by name alone, first result
type OrganizationResolver struct {
	dir apollo.Client
}

// NewOrganizationResolver creates the resolver stage.
func NewOrganizationResolver(dir apollo.Client) *OrganizationResolver {
	return &OrganizationResolver{dir: dir}
}

// Name implements pipeline.Stage.
func (s *OrganizationResolver) Name() string { return "organization" }

// Requires implements pipeline.Stage.
func (s *OrganizationResolver) Requires() []pipeline.Field {
	return []pipeline.Field{FieldOrganizationName, FieldHeadquarters, FieldWebsite}
}

// Provides implements pipeline.Stage.
func (s *OrganizationResolver) Provides() []pipeline.Field {
	return []pipeline.Field{FieldOrganizationID}
}

// Process implements pipeline.Stage.
func (s *OrganizationResolver) Process(ctx context.Context, in pipeline.Record, rc *pipeline.RunContext) (pipeline.Record, error) {
	name := in.String(FieldOrganizationName)

	domain := Domain(in.String(FieldWebsite))
	if domain == "" {
		return pipeline.Record{}, rc.Fail(pipeline.KindData, "could not extract company domain for %s", name)
	}

	id, tier, err := s.resolve(ctx, rc, name, primaryLocation(in.String(FieldHeadquarters)), domain)
	if err != nil {
		return pipeline.Record{}, err
	}

	rc.Log.Debug("organization resolved",
		zap.String("company", name),
		zap.String("organization_id", id),
		zap.Int("tier", tier),
	)
	return in.With(FieldOrganizationID, id)
}

func (s *OrganizationResolver) resolve(ctx context.Context, rc *pipeline.RunContext, name, location, domain string) (string, int, error) {
	// Tier 1: domain search, verified.
	data, err := s.search(ctx, rc, name, apollo.OrganizationSearchRequest{Domains: []string{domain}})
	if err != nil {
		return "", 0, err
	}
	if id := matchDomain(data, domain); id != "" {
		return id, 1, nil
	}

	// Tier 2: name + location search, verified.
	req := apollo.OrganizationSearchRequest{Name: name}
	if location != "" {
		req.Locations = []string{location}
	}
	data, err = s.search(ctx, rc, name, req)
	if err != nil {
		return "", 0, err
	}
	if id := matchDomain(data, domain); id != "" {
		return id, 2, nil
	}

	// Tier 3: unverified first hit of the same search.
	if id := firstID(data); id != "" {
		return id, 3, nil
	}

	// Tier 4: name only, unverified.
	data, err = s.search(ctx, rc, name, apollo.OrganizationSearchRequest{Name: name})
	if err != nil {
		return "", 0, err
	}
	if id := firstID(data); id != "" {
		return id, 4, nil
	}

	return "", 0, rc.Fail(pipeline.KindResolution, "could not find organization for %s", name)
}

func (s *OrganizationResolver) search(ctx context.Context, rc *pipeline.RunContext, name string, req apollo.OrganizationSearchRequest) (*apollo.OrganizationSearchResponse, error) {
	rc.Tracker.IncDirectoryCalls()
	data, err := s.dir.SearchOrganizations(ctx, req)
	if err != nil {
		return nil, pipeline.External(err, "organization search for %s", name)
	}
	return data, nil
}

// matchDomain returns the id of the first result whose website (or, failing
// that, declared primary domain) is domain. Accounts are checked before
// organizations.
func matchDomain(data *apollo.OrganizationSearchResponse, domain string) string {
	for _, a := range data.Accounts {
		if Domain(a.WebsiteURL) == domain {
			return a.OrganizationID
		}
	}
	for _, a := range data.Accounts {
		if a.PrimaryDomain == domain {
			return a.OrganizationID
		}
	}

	for _, o := range data.Organizations {
		if Domain(o.WebsiteURL) == domain {
			return o.ID
		}
	}
	for _, o := range data.Organizations {
		if o.PrimaryDomain == domain {
			return o.ID
		}
	}
	return ""
}

// firstID returns the first account's organization id, falling back to the
// first organization when there is no account or it carries no id.
func firstID(data *apollo.OrganizationSearchResponse) string {
	if len(data.Accounts) > 0 && data.Accounts[0].OrganizationID != "" {
		return data.Accounts[0].OrganizationID
	}
	if len(data.Organizations) > 0 {
		return data.Organizations[0].ID
	}
	return ""
}

// primaryLocation is the first comma-separated token of a location, e.g.
// "Austin" for "Austin, Texas, United States".
func primaryLocation(hq string) string {
	first, _, _ := strings.Cut(hq, ",")
	return strings.TrimSpace(first)
}
