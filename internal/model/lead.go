package model

// DeceasedRecord is one row of the death index. Person is in "LAST FIRST
// [MIDDLE...]" order as the registry publishes it.
type DeceasedRecord struct {
	Person    string `json:"person"`
	DeathDate string `json:"deathDate"`
	Sex       string `json:"sex"`
}

// OwnershipMatch links a deceased person to one assessor property record.
type OwnershipMatch struct {
	DeceasedRecord
	HomeOwnersName string `json:"homeOwnersName"`
	Address        string `json:"address"`
	MailingAddress string `json:"mailingAddress"`
	AppraisedValue string `json:"appraised_value"`
	PropertyID     string `json:"propertyId,omitempty"`
}

// PhoneConfidence grades a reconciled phone list.
type PhoneConfidence string

const (
	// ConfidenceHigh means the number was returned by both providers.
	ConfidenceHigh PhoneConfidence = "High"
	// ConfidenceMedium means the number came from the skip-trace provider only.
	ConfidenceMedium PhoneConfidence = "Medium"
)

// Degradation records why a lead lost some or all of its enrichment.
type Degradation string

const (
	DegradationNone                  Degradation = ""
	DegradationShapeMismatch         Degradation = "shape_mismatch"
	DegradationLookupMiss            Degradation = "lookup_miss"
	DegradationInsufficientHousehold Degradation = "insufficient_household"
	DegradationUnresolvableContact   Degradation = "unresolvable_contact"
)

// DeedDetails holds current-deed financials from skip trace.
type DeedDetails struct {
	MortgageAmount string `json:"MortgageAmount"`
	Equity         string `json:"Equity"`
	LoanToValue    string `json:"loanToValue"`
}

// DistressedDetails holds Y/N distress flags from skip trace.
type DistressedDetails struct {
	Foreclosure    string `json:"Foreclosure"`
	PreForeclosure string `json:"PreForeclosure"`
	BankOwned      string `json:"BankOwned"`
	Auction        string `json:"Auction"`
	Vacant         string `json:"Vacant"`
	Absentee       string `json:"Absentee"`
}

// SalesInfo holds the assessor's sale history.
type SalesInfo struct {
	PriorSaleAmount      string `json:"priorSaleAmount"`
	PriorSaleDate        string `json:"priorSaleDate"`
	SellerPurchaseDate   string `json:"sellerPurchaseDate"`
	SellerPurchaseAmount string `json:"sellerPurchaseAmount"`
}

// PropertySpecs holds physical property attributes.
type PropertySpecs struct {
	LivingSqFt   string `json:"livingSqFt"`
	BasementArea string `json:"basementArea"`
	Garage       string `json:"Garage"`
	Pool         string `json:"Pool"`
	LotAcres     string `json:"lotAcres"`
	FullBaths    string `json:"fullBaths"`
	HalfBaths    string `json:"halfBaths"`
	Bedrooms     string `json:"bedrooms"`
	Stories      string `json:"stories"`
}

// EnrichedLead is an ownership match after household resolution, provider
// enrichment and phone reconciliation. Nil phone slices mean the provider
// returned nothing; empty strings mean the field was missing.
type EnrichedLead struct {
	OwnershipMatch
	Spouse        string `json:"spouse"`
	GoogleAddress string `json:"googleAddress"`

	SkipEnginePhoneNumbers []string `json:"skipEnginePhoneNumbers"`
	EndatoPhoneNumbers     []string `json:"endatoPhoneNumbers"`
	Age                    string   `json:"age"`

	DeedDetails       DeedDetails       `json:"deedDetails"`
	TaxDelinquentYear string            `json:"taxDelinquentYear"`
	YearBuilt         string            `json:"yearBuilt"`
	DistressedDetails DistressedDetails `json:"distressedDetails"`
	SalesInfo         SalesInfo         `json:"salesInfo"`
	PropertySpecs     PropertySpecs     `json:"propertySpecs"`
	EstimatedValue    string            `json:"estimatedValue"`

	CleanedNumbers        []string        `json:"cleanedNumbers"`
	PhoneNumberConfidence PhoneConfidence `json:"phoneNumberConfidence,omitempty"`

	Degradation Degradation `json:"degradation,omitempty"`
}

// Publishable reports whether the lead carries everything the CRM and SMS
// steps need.
func (l EnrichedLead) Publishable() bool {
	return l.Spouse != "" && l.GoogleAddress != "" && len(l.CleanedNumbers) > 0
}
