// Package crm adapts the Salesforce client to the lead publisher.
package crm

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/publish"
	"github.com/sells-group/estate-leads/pkg/salesforce"
)

// Defaults for new opportunities.
const (
	DefaultStage           = "Prospecting"
	DefaultCloseInDays     = 90
	DefaultLeadStatus      = "Attempted to Contact"
	DefaultContactType     = "Seller"
	DefaultOpportunityType = "New Listing"
)

// Settings tune the records the adapter writes.
type Settings struct {
	OwnerID     string
	Stage       string
	CloseInDays int
}

// Salesforce implements publish.CRM on Contact and Opportunity.
type Salesforce struct {
	client   salesforce.Client
	settings Settings
	now      func() time.Time
}

var _ publish.CRM = (*Salesforce)(nil)

// NewSalesforce wraps a Salesforce client.
func NewSalesforce(client salesforce.Client, s Settings) *Salesforce {
	if s.Stage == "" {
		s.Stage = DefaultStage
	}
	if s.CloseInDays <= 0 {
		s.CloseInDays = DefaultCloseInDays
	}
	return &Salesforce{client: client, settings: s, now: time.Now}
}

// SearchContact implements publish.CRM.
func (s *Salesforce) SearchContact(ctx context.Context, first, last string) (string, error) {
	c, err := salesforce.FindContactByName(ctx, s.client, first, last)
	if err != nil {
		return "", eris.Wrap(err, "crm: search contact")
	}
	if c == nil {
		return "", nil
	}
	return c.ID, nil
}

// CreateContact implements publish.CRM.
func (s *Salesforce) CreateContact(ctx context.Context, c publish.Contact) (string, error) {
	id, err := salesforce.CreateContact(ctx, s.client, s.contactFields(c))
	if err != nil {
		return "", eris.Wrap(err, "crm: create contact")
	}
	zap.L().Info("crm: contact created", zap.String("contact_id", id), zap.String("name", c.FirstName+" "+c.LastName))
	return id, nil
}

// CreateDeal implements publish.CRM.
func (s *Salesforce) CreateDeal(ctx context.Context, contactID string, d publish.Deal) (string, error) {
	id, err := salesforce.CreateOpportunity(ctx, s.client, contactID, s.dealFields(d))
	if err != nil {
		return "", eris.Wrap(err, "crm: create deal")
	}
	zap.L().Info("crm: deal created", zap.String("opportunity_id", id), zap.String("contact_id", contactID))
	return id, nil
}

// Verify checks that every field the adapter writes exists and is
// createable on both objects.
func (s *Salesforce) Verify(ctx context.Context) error {
	checks := []struct {
		sObject string
		fields  []string
	}{
		{salesforce.SObjectContact, fieldNames(s.contactFields(publish.Contact{}))},
		{salesforce.SObjectOpportunity, append(fieldNames(s.dealFields(publish.Deal{})), "ContactId")},
	}
	for _, c := range checks {
		missing, err := salesforce.MissingFields(ctx, s.client, c.sObject, c.fields)
		if err != nil {
			return eris.Wrapf(err, "crm: describe %s", c.sObject)
		}
		if len(missing) > 0 {
			return eris.Errorf("crm: %s is missing fields: %s", c.sObject, strings.Join(missing, ", "))
		}
	}
	return nil
}

func (s *Salesforce) contactFields(c publish.Contact) map[string]any {
	f := map[string]any{
		"FirstName":             c.FirstName,
		"LastName":              c.LastName,
		"MailingStreet":         c.Street,
		"MailingCity":           c.City,
		"MailingState":          c.State,
		"MailingPostalCode":     c.Zip,
		"Phone":                 phoneAt(c.Phones, 0),
		"Phone_2__c":            phoneAt(c.Phones, 1),
		"Phone_3__c":            phoneAt(c.Phones, 2),
		"Phone_4__c":            phoneAt(c.Phones, 3),
		"Age__c":                c.Age,
		"Death_Date__c":         c.DeathDate,
		"Gender__c":             c.Gender,
		"Phone_Confidence__c":   c.PhoneConfidence,
		"Spouse_Name__c":        c.Spouse,
		"Text_Attempts__c":      c.TextAttempts,
		"Lead_Status__c":        DefaultLeadStatus,
		"Sales_Contact_Type__c": DefaultContactType,
	}
	if s.settings.OwnerID != "" {
		f["OwnerId"] = s.settings.OwnerID
	}
	return f
}

func (s *Salesforce) dealFields(d publish.Deal) map[string]any {
	f := map[string]any{
		"Name":                      d.Name,
		"StageName":                 s.settings.Stage,
		"CloseDate":                 s.now().AddDate(0, 0, s.settings.CloseInDays).Format(time.DateOnly),
		"Type":                      DefaultOpportunityType,
		"Amount":                    amount(d.Amount),
		"Property_Address__c":       d.Address,
		"Appraised_Value__c":        d.AppraisedValue,
		"Bedrooms__c":               d.Bedrooms,
		"Full_Baths__c":             d.FullBaths,
		"Half_Baths__c":             d.HalfBaths,
		"Distress_Details__c":       d.DistressDetails,
		"Equity__c":                 d.Equity,
		"LTV__c":                    d.LoanToValue,
		"Mortgage_Amount__c":        d.MortgageAmount,
		"Garage__c":                 d.Garage,
		"Pool__c":                   d.Pool,
		"Living_Sq_Ft__c":           d.LivingSqFt,
		"Lot_Acres__c":              d.LotAcres,
		"Prior_Sale_Amount__c":      d.PriorSaleAmount,
		"Prior_Sale_Date__c":        d.PriorSaleDate,
		"Seller_Purchase_Amount__c": d.SellerPurchaseAmount,
		"Seller_Purchase_Date__c":   d.SellerPurchaseDate,
		"Stories__c":                d.Stories,
		"Tax_Delinquent_Year__c":    d.TaxDelinquentYear,
		"Year_Built__c":             d.YearBuilt,
	}
	if s.settings.OwnerID != "" {
		f["OwnerId"] = s.settings.OwnerID
	}
	return f
}

func phoneAt(phones []string, i int) string {
	if i < len(phones) {
		return phones[i]
	}
	return ""
}

// amount returns the numeric value of s, or nil so the field is left empty.
func amount(s string) any {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return f
}

func fieldNames(f map[string]any) []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	return out
}
