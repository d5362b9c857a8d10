package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Contact is the subset of a Salesforce Contact the publisher reads.
type Contact struct {
	ID        string `json:"Id" salesforce:"Id"`
	FirstName string `json:"FirstName" salesforce:"FirstName"`
	LastName  string `json:"LastName" salesforce:"LastName"`
	Phone     string `json:"Phone" salesforce:"Phone"`
}

var contactFields = []string{"Id", "FirstName", "LastName", "Phone"}

// FindContactByName returns the first Contact whose first and last name
// equal the given values, or nil when none exists.
func FindContactByName(ctx context.Context, c Client, first, last string) (*Contact, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Contact WHERE FirstName = '%s' AND LastName = '%s' LIMIT 1",
		strings.Join(contactFields, ", "),
		escapeSoql(first),
		escapeSoql(last),
	)

	var contacts []Contact
	if err := c.Query(ctx, soql, &contacts); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find contact %s %s", first, last))
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
