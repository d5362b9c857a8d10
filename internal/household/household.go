// Package household derives the surviving co-owner from an assessor owner
// string.
package household

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/estate-leads/internal/names"
)

var (
	// ErrInsufficientHousehold means the property has a single owner, so
	// there is no survivor to contact.
	ErrInsufficientHousehold = eris.New("household: single owner")

	// ErrAmbiguousHousehold means every owner segment overlaps the deceased
	// name (e.g. identical-name co-owners) and no survivor can be chosen.
	ErrAmbiguousHousehold = eris.New("household: no co-owner distinct from deceased")
)

// Owners splits a comma-joined owner string into trimmed, non-empty segments.
func Owners(homeOwnersName string) []string {
	var out []string
	for _, seg := range strings.Split(homeOwnersName, ",") {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Resolve returns the surviving household member as "First Last". The first
// owner segment whose text is not contained in the deceased person's name
// wins.
func Resolve(homeOwnersName, person string) (string, error) {
	owners := Owners(homeOwnersName)
	if len(owners) < 2 {
		return "", ErrInsufficientHousehold
	}

	deceased := strings.ToUpper(strings.Join(names.Tokens(person), " "))
	for _, owner := range owners {
		seg := strings.ToUpper(strings.Join(names.Tokens(owner), " "))
		if strings.Contains(deceased, seg) {
			continue
		}
		return names.SwapToFirstLast(owner), nil
	}
	return "", ErrAmbiguousHousehold
}
