package publish

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/internal/names"
)

// maxContactPhones is how many reconciled numbers fit on a contact.
const maxContactPhones = 4

// Contact is the CRM contact written for a new household.
type Contact struct {
	FirstName       string
	LastName        string
	Street          string
	City            string
	State           string
	Zip             string
	Age             string
	DeathDate       string
	Gender          string
	Phones          []string
	PhoneConfidence string
	Spouse          string
	TextAttempts    int
}

// Deal is the CRM deal (opportunity) written for a property.
type Deal struct {
	Name                 string
	Address              string
	Amount               string
	AppraisedValue       string
	Bedrooms             string
	FullBaths            string
	HalfBaths            string
	DistressDetails      string
	Equity               string
	LoanToValue          string
	MortgageAmount       string
	Garage               bool
	Pool                 bool
	LivingSqFt           string
	LotAcres             string
	PriorSaleAmount      string
	PriorSaleDate        string
	SellerPurchaseAmount string
	SellerPurchaseDate   string
	Stories              string
	TaxDelinquentYear    string
	YearBuilt            string
}

// ContactFor maps a lead to its CRM contact. Names are title-cased so the
// contact can be found again by SearchContact.
func ContactFor(lead model.EnrichedLead, texted int) Contact {
	first, last := names.FirstLast(lead.Person)
	mailing := ParseMailingAddress(lead.MailingAddress)

	phones := make([]string, 0, maxContactPhones)
	for _, n := range lead.CleanedNumbers {
		if len(phones) == maxContactPhones {
			break
		}
		phones = append(phones, E164(n))
	}

	return Contact{
		FirstName:       first,
		LastName:        last,
		Street:          mailing.Street,
		City:            mailing.City,
		State:           mailing.State,
		Zip:             mailing.Zip,
		Age:             strings.TrimSpace(lead.Age),
		DeathDate:       strings.TrimSpace(lead.DeathDate),
		Gender:          strings.TrimSpace(lead.Sex),
		Phones:          phones,
		PhoneConfidence: string(lead.PhoneNumberConfidence),
		Spouse:          lead.Spouse,
		TextAttempts:    texted,
	}
}

// DealFor maps a lead to its CRM deal.
func DealFor(lead model.EnrichedLead) Deal {
	specs := lead.PropertySpecs
	return Deal{
		Name:                 strings.TrimSpace(strings.SplitN(lead.GoogleAddress, ",", 2)[0]),
		Address:              lead.GoogleAddress,
		Amount:               lead.EstimatedValue,
		AppraisedValue:       CleanCurrency(lead.AppraisedValue),
		Bedrooms:             firstChar(specs.Bedrooms),
		FullBaths:            firstChar(specs.FullBaths),
		HalfBaths:            firstChar(specs.HalfBaths),
		DistressDetails:      DistressList(lead.DistressedDetails),
		Equity:               strings.TrimSpace(lead.DeedDetails.Equity),
		LoanToValue:          lead.DeedDetails.LoanToValue,
		MortgageAmount:       lead.DeedDetails.MortgageAmount,
		Garage:               specs.Garage == "Y",
		Pool:                 specs.Pool == "Y",
		LivingSqFt:           specs.LivingSqFt,
		LotAcres:             twoDecimals(specs.LotAcres),
		PriorSaleAmount:      strings.TrimSpace(lead.SalesInfo.PriorSaleAmount),
		PriorSaleDate:        datePart(lead.SalesInfo.PriorSaleDate),
		SellerPurchaseAmount: strings.TrimSpace(lead.SalesInfo.SellerPurchaseAmount),
		SellerPurchaseDate:   datePart(lead.SalesInfo.SellerPurchaseDate),
		Stories:              specs.Stories,
		TaxDelinquentYear:    lead.TaxDelinquentYear,
		YearBuilt:            lead.YearBuilt,
	}
}

// MailingAddress is an assessor mailing address split for the CRM.
type MailingAddress struct {
	Street string
	City   string
	State  string
	Zip    string
}

// ParseMailingAddress splits "STREET, CITY STATE ZIP". Multi-word cities
// are kept whole; missing parts are empty.
func ParseMailingAddress(s string) MailingAddress {
	street, rest, _ := strings.Cut(s, ",")
	out := MailingAddress{Street: strings.TrimSpace(street)}

	toks := strings.Fields(rest)
	switch {
	case len(toks) >= 3:
		out.Zip = toks[len(toks)-1]
		out.State = toks[len(toks)-2]
		out.City = strings.Join(toks[:len(toks)-2], " ")
	case len(toks) == 2:
		out.City, out.State = toks[0], toks[1]
	case len(toks) == 1:
		out.City = toks[0]
	}
	return out
}

// E164 prefixes a ten-digit US number with +1.
func E164(digits string) string {
	return "+1" + digits
}

// CleanCurrency strips dollar signs, thousands separators and padding.
func CleanCurrency(s string) string {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

var distressLabels = []struct {
	label string
	value func(model.DistressedDetails) string
}{
	{"Foreclosure", func(d model.DistressedDetails) string { return d.Foreclosure }},
	{"Pre_Foreclosure", func(d model.DistressedDetails) string { return d.PreForeclosure }},
	{"Bank_Owned", func(d model.DistressedDetails) string { return d.BankOwned }},
	{"Auction", func(d model.DistressedDetails) string { return d.Auction }},
	{"Vacant", func(d model.DistressedDetails) string { return d.Vacant }},
	{"Absentee", func(d model.DistressedDetails) string { return d.Absentee }},
}

// DistressList joins the labels of every flag set to "Y" with ";".
func DistressList(d model.DistressedDetails) string {
	var out []string
	for _, l := range distressLabels {
		if l.value(d) == "Y" {
			out = append(out, l.label)
		}
	}
	return strings.Join(out, ";")
}

func firstChar(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return string(r)
	}
	return ""
}

func datePart(s string) string {
	d, _, _ := strings.Cut(s, "T")
	return strings.TrimSpace(d)
}

func twoDecimals(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}
