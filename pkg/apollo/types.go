package apollo

import (
	"errors"

	"github.com/rotisserie/eris"
)

// ErrInvalidResponse marks a 2xx response whose body is missing required
// structure.
var ErrInvalidResponse = errors.New("apollo: invalid response")

// Account is a company already saved in the caller's Apollo workspace.
type Account struct {
	Name                string `json:"name"`
	WebsiteURL          string `json:"website_url"`
	PrimaryDomain       string `json:"primary_domain"`
	City                string `json:"city"`
	State               string `json:"state"`
	Country             string `json:"country"`
	OrganizationID      string `json:"organization_id"`
	OrganizationCity    string `json:"organization_city"`
	OrganizationState   string `json:"organization_state"`
	OrganizationCountry string `json:"organization_country"`
}

// Organization is a company from the global Apollo database.
type Organization struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WebsiteURL    string `json:"website_url"`
	PrimaryDomain string `json:"primary_domain"`
}

// OrganizationSearchResponse is the response of POST /mixed_companies/search.
type OrganizationSearchResponse struct {
	Accounts      []Account      `json:"accounts"`
	Organizations []Organization `json:"organizations"`
}

// Person is one people-search hit. The last name is obfuscated until the
// person is matched.
type Person struct {
	ID                 string `json:"id"`
	FirstName          string `json:"first_name"`
	LastNameObfuscated string `json:"last_name_obfuscated"`
	Title              string `json:"title"`
	HasEmail           bool   `json:"has_email"`
	LastRefreshedAt    string `json:"last_refreshed_at"`
}

// PeopleSearchResponse is the response of POST /mixed_people/api_search.
type PeopleSearchResponse struct {
	TotalEntries int      `json:"total_entries"`
	People       []Person `json:"people"`
}

// PersonDetail is the revealed contact returned by POST /people/match.
type PersonDetail struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Email          string `json:"email"`
	EmailStatus    string `json:"email_status"`
	Headline       string `json:"headline"`
	LinkedInURL    string `json:"linkedin_url"`
	OrganizationID string `json:"organization_id"`
}

// PersonMatchResponse is the response of POST /people/match.
type PersonMatchResponse struct {
	Person PersonDetail `json:"person"`
}

// Wire shapes use pointers so absent keys can be told apart from empty ones.

type organizationSearchWire struct {
	Accounts      *[]Account      `json:"accounts"`
	Organizations *[]Organization `json:"organizations"`
}

func (w organizationSearchWire) validate() (*OrganizationSearchResponse, error) {
	if w.Accounts == nil || w.Organizations == nil {
		return nil, eris.Wrap(ErrInvalidResponse, "search organizations: accounts and organizations are required")
	}
	for i, o := range *w.Organizations {
		if o.ID == "" {
			return nil, eris.Wrapf(ErrInvalidResponse, "search organizations: organizations[%d] has no id", i)
		}
	}
	return &OrganizationSearchResponse{Accounts: *w.Accounts, Organizations: *w.Organizations}, nil
}

type peopleSearchWire struct {
	TotalEntries *int      `json:"total_entries"`
	People       *[]Person `json:"people"`
}

func (w peopleSearchWire) validate() (*PeopleSearchResponse, error) {
	if w.People == nil {
		return nil, eris.Wrap(ErrInvalidResponse, "search people: people is required")
	}
	for i, p := range *w.People {
		if p.ID == "" {
			return nil, eris.Wrapf(ErrInvalidResponse, "search people: people[%d] has no id", i)
		}
	}
	out := &PeopleSearchResponse{People: *w.People}
	if w.TotalEntries != nil {
		out.TotalEntries = *w.TotalEntries
	}
	return out, nil
}

type personMatchWire struct {
	Person *PersonDetail `json:"person"`
}

func (w personMatchWire) validate() (*PersonMatchResponse, error) {
	if w.Person == nil {
		return nil, eris.Wrap(ErrInvalidResponse, "match person: person is required")
	}
	if w.Person.ID == "" || w.Person.Email == "" {
		return nil, eris.Wrap(ErrInvalidResponse, "match person: id and email are required")
	}
	return &PersonMatchResponse{Person: *w.Person}, nil
}
