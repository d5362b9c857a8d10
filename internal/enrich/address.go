package enrich

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// addressPattern splits "<street>, <city>, <state> <zip>, <country>".
var addressPattern = regexp.MustCompile(`^(.*?),\s*(.*?),\s*(.*?)\s*(\d{5}),\s*(.*)$`)

// Address is a parsed geocoder formatted address.
type Address struct {
	Street  string
	City    string
	State   string
	Zip     string
	Country string
}

// ParseAddress splits a formatted address into its parts.
func ParseAddress(formatted string) (Address, error) {
	m := addressPattern.FindStringSubmatch(strings.TrimSpace(formatted))
	if m == nil {
		return Address{}, eris.Errorf("enrich: unrecognized address %q", formatted)
	}
	return Address{
		Street:  strings.TrimSpace(m[1]),
		City:    strings.TrimSpace(m[2]),
		State:   strings.TrimSpace(m[3]),
		Zip:     m[4],
		Country: strings.TrimSpace(m[5]),
	}, nil
}
