package enrich

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/internal/records"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
)

// Workflow names.
const (
	WorkflowCrunchy = "crunchy"
	WorkflowLendBae = "lendbae"
)

// Deps are the external collaborators shared by every workflow.
type Deps struct {
	Directory apollo.Client
	Matcher   TitleMatcher
}

// Workflow ties an input schema to the pipeline that enriches it and the
// columns written for each enriched record.
type Workflow struct {
	Name   string
	Input  records.Schema
	Output []pipeline.Field
	// Label names the input column used to identify a record in logs.
	Label pipeline.Field
	build func(Deps) *pipeline.Pipeline
}

// Pipeline builds the workflow's stage chain. The returned pipeline reports
// a composition problem through Err.
func (w Workflow) Pipeline(deps Deps) *pipeline.Pipeline {
	return w.build(deps)
}

// CrunchySchema is the funding-round export layout.
var CrunchySchema = records.Schema{
	Name: WorkflowCrunchy,
	Columns: []records.Column{
		{Name: FieldOrganizationName},
		{Name: FieldOrganizationURL, Nullable: true},
		{Name: FieldLastFundingDate},
		{Name: FieldLastFundingType},
		{Name: FieldEmployees},
		{Name: FieldHeadquarters},
		{Name: FieldDescription, Nullable: true},
		{Name: FieldLastFundingAmount, Kind: records.Number},
		{Name: FieldFundingCurrency},
		{Name: FieldLastFundingAmountUS, Kind: records.Number},
		{Name: FieldLeadInvestors, Nullable: true},
		{Name: FieldWebsite},
	},
}

// LendBaeSchema is the lender list layout.
var LendBaeSchema = records.Schema{
	Name: WorkflowLendBae,
	Columns: []records.Column{
		{Name: FieldCompanyName},
		{Name: FieldCompanyEmailName},
		{Name: FieldWebsite},
		{Name: FieldCompanyCity},
		{Name: FieldSICCodes},
		{Name: FieldNAICSCodes},
		{Name: FieldShortDescription},
	},
}

var workflows = map[string]Workflow{
	WorkflowCrunchy: {
		Name:  WorkflowCrunchy,
		Input: CrunchySchema,
		Label: FieldOrganizationName,
		Output: []pipeline.Field{
			FieldCompanyName,
			FieldFunding,
			FieldFundingType,
			FieldWebsite,
			FieldContactFirstName,
			FieldContactLastName,
			FieldContactTitle,
			FieldContactEmail,
			FieldLeadInvestor,
		},
		build: func(d Deps) *pipeline.Pipeline {
			return pipeline.New(CrunchySchema.Fields()...).
				Pipe(PreFilter{}).
				Pipe(NewOrganizationResolver(d.Directory)).
				Pipe(NewPeopleFetcher(d.Directory)).
				Pipe(NewContactSelector(d.Matcher)).
				Pipe(NewContactEnricher(d.Directory)).
				Pipe(FundingPostProcess{})
		},
	},
	WorkflowLendBae: {
		Name:   WorkflowLendBae,
		Input:  LendBaeSchema,
		Output: append(LendBaeSchema.Fields(), ContactFields...),
		Label:  FieldCompanyName,
		build: func(d Deps) *pipeline.Pipeline {
			return pipeline.New(LendBaeSchema.Fields()...).
				Pipe(Normalize{}).
				Pipe(NewOrganizationResolver(d.Directory)).
				Pipe(NewPeopleFetcher(d.Directory)).
				Pipe(NewContactSelector(d.Matcher)).
				Pipe(NewContactEnricher(d.Directory))
		},
	},
}

// Validate reports a composition error in p, or an output column that p
// does not guarantee on a completed record.
func (w Workflow) Validate(p *pipeline.Pipeline) error {
	if err := p.Err(); err != nil {
		return eris.Wrapf(err, "enrich: workflow %s", w.Name)
	}
	for _, f := range w.Output {
		if !p.Guarantees(f) {
			return eris.Errorf("enrich: workflow %s never produces output column %q", w.Name, f)
		}
	}
	return nil
}

// Lookup returns the named workflow.
func Lookup(name string) (Workflow, error) {
	w, ok := workflows[name]
	if !ok {
		return Workflow{}, eris.Errorf("enrich: unknown workflow %q (want one of %v)", name, WorkflowNames())
	}
	return w, nil
}

// WorkflowNames lists the registered workflows in sorted order.
func WorkflowNames() []string {
	names := make([]string, 0, len(workflows))
	for n := range workflows {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
