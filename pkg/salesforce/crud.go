package salesforce

import (
	"context"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
)

// SObject names written by the publisher.
const (
	SObjectContact     = "Contact"
	SObjectOpportunity = "Opportunity"
)

// CreateContact creates a new Contact and returns its Salesforce ID.
func CreateContact(ctx context.Context, c Client, fields map[string]any) (string, error) {
	if fields["LastName"] == nil || fields["LastName"] == "" {
		return "", eris.New("sf: contact LastName is required")
	}
	id, err := c.InsertOne(ctx, SObjectContact, fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create contact")
	}
	return id, nil
}

// CreateOpportunity creates an Opportunity linked to the given Contact and
// returns its Salesforce ID.
func CreateOpportunity(ctx context.Context, c Client, contactID string, fields map[string]any) (string, error) {
	if contactID == "" {
		return "", eris.New("sf: contact id is required for opportunity")
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	if fields["Name"] == nil || fields["Name"] == "" {
		return "", eris.New("sf: opportunity Name is required")
	}
	fields["ContactId"] = contactID
	id, err := c.InsertOne(ctx, SObjectOpportunity, fields)
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("sf: create opportunity for contact %s", contactID))
	}
	return id, nil
}

// MissingFields describes sObject and returns the names in want that it
// does not expose as createable fields, sorted.
func MissingFields(ctx context.Context, c Client, sObject string, want []string) ([]string, error) {
	desc, err := c.DescribeSObject(ctx, sObject)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(desc.Fields))
	for _, f := range desc.Fields {
		if f.Createable {
			have[f.Name] = true
		}
	}
	var missing []string
	for _, name := range want {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
