package enrich

import "github.com/sells-group/crunchy-cli/internal/pipeline"

// Input columns shared by both workflows after normalization.
const (
	FieldOrganizationName pipeline.Field = "Organization Name"
	FieldHeadquarters     pipeline.Field = "Headquarters Location"
	FieldWebsite          pipeline.Field = "Website"
)

// Funding-round export columns.
const (
	FieldOrganizationURL     pipeline.Field = "Organization Name URL"
	FieldLastFundingDate     pipeline.Field = "Last Funding Date"
	FieldLastFundingType     pipeline.Field = "Last Funding Type"
	FieldEmployees           pipeline.Field = "Number of Employees"
	FieldDescription         pipeline.Field = "Description"
	FieldLastFundingAmount   pipeline.Field = "Last Funding Amount"
	FieldFundingCurrency     pipeline.Field = "Last Funding Amount Currency"
	FieldLastFundingAmountUS pipeline.Field = "Last Funding Amount (in USD)"
	FieldLeadInvestors       pipeline.Field = "Lead Investors"
)

// Lender list columns.
const (
	FieldCompanyName      pipeline.Field = "Company Name"
	FieldCompanyEmailName pipeline.Field = "Company Name for Emails"
	FieldCompanyCity      pipeline.Field = "Company City"
	FieldSICCodes         pipeline.Field = "SIC Codes"
	FieldNAICSCodes       pipeline.Field = "NAICS Codes"
	FieldShortDescription pipeline.Field = "Short Description"
)

// Fields added while resolving a contact. They never reach an output sheet.
const (
	FieldOrganizationID pipeline.Field = "organization_id"
	FieldPeople         pipeline.Field = "people"
	FieldBestContactID  pipeline.Field = "best_contact_id"
)

// Contact columns added by enrichment.
const (
	FieldContactFirstName pipeline.Field = "Contact First Name"
	FieldContactLastName  pipeline.Field = "Contact Last Name"
	FieldContactTitle     pipeline.Field = "Contact Title"
	FieldContactEmail     pipeline.Field = "Contact Email"
)

// Output columns computed by post-processing.
const (
	FieldFunding      pipeline.Field = "Funding"
	FieldFundingType  pipeline.Field = "Funding Type"
	FieldLeadInvestor pipeline.Field = "Lead Investor"
)

// ContactFields are the columns every workflow appends to its output.
var ContactFields = []pipeline.Field{
	FieldContactFirstName,
	FieldContactLastName,
	FieldContactTitle,
	FieldContactEmail,
}
