// Package apollo is a minimal client for the Apollo organization and people
// directory API.
package apollo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.apollo.io/api/v1"

// BroadSeniorities is the seniority filter used when a title search finds
// nobody.
var BroadSeniorities = []string{"owner", "founder", "c_suite", "partner", "vp", "head", "director"}

// Client searches organizations and people and reveals contact details.
type Client interface {
	SearchOrganizations(ctx context.Context, req OrganizationSearchRequest) (*OrganizationSearchResponse, error)
	SearchPeople(ctx context.Context, req PeopleSearchRequest) (*PeopleSearchResponse, error)
	MatchPerson(ctx context.Context, id string) (*PersonMatchResponse, error)
}

// OrganizationSearchRequest filters POST /mixed_companies/search. Empty
// fields are omitted.
type OrganizationSearchRequest struct {
	Name      string
	Locations []string
	Domains   []string
}

// PeopleSearchRequest filters POST /mixed_people/api_search.
type PeopleSearchRequest struct {
	OrganizationID       string
	Titles               []string
	Seniorities          []string
	IncludeSimilarTitles bool
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client. A nil client keeps the
// default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client. A
// client passed with WithHTTPClient is used as is.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates an Apollo API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		timeout: 60 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return c
}

func (c *httpClient) SearchOrganizations(ctx context.Context, req OrganizationSearchRequest) (*OrganizationSearchResponse, error) {
	q := url.Values{}
	if req.Name != "" {
		q.Set("q_organization_name", req.Name)
	}
	for _, loc := range req.Locations {
		q.Add("organization_locations[]", loc)
	}
	for _, d := range req.Domains {
		q.Add("q_organization_domains_list[]", d)
	}

	var wire organizationSearchWire
	if err := c.post(ctx, "search organizations", "/mixed_companies/search", q, &wire); err != nil {
		return nil, err
	}
	return wire.validate()
}

func (c *httpClient) SearchPeople(ctx context.Context, req PeopleSearchRequest) (*PeopleSearchResponse, error) {
	if req.OrganizationID == "" {
		return nil, eris.New("apollo: search people: organization id is required")
	}

	q := url.Values{}
	q.Set("organization_ids[]", req.OrganizationID)
	q.Set("include_similar_titles", strconv.FormatBool(req.IncludeSimilarTitles))
	for _, t := range req.Titles {
		q.Add("person_titles[]", t)
	}
	for _, s := range req.Seniorities {
		q.Add("person_seniorities[]", s)
	}

	var wire peopleSearchWire
	if err := c.post(ctx, "search people", "/mixed_people/api_search", q, &wire); err != nil {
		return nil, err
	}
	return wire.validate()
}

func (c *httpClient) MatchPerson(ctx context.Context, id string) (*PersonMatchResponse, error) {
	if id == "" {
		return nil, eris.New("apollo: match person: id is required")
	}

	q := url.Values{}
	q.Set("id", id)
	q.Set("reveal_personal_emails", "true")

	var wire personMatchWire
	if err := c.post(ctx, "match person", "/people/match", q, &wire); err != nil {
		return nil, err
	}
	return wire.validate()
}

// post issues a body-less POST with query parameters and decodes the JSON
// response into out.
func (c *httpClient) post(ctx context.Context, op, path string, q url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return eris.Wrapf(err, "apollo: %s: create request", op)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrapf(err, "apollo: %s: send request", op)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "apollo: %s: read response", op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "apollo: %s: unmarshal response", op)
	}
	return nil
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apollo: %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}
