package deathindex

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sells-group/estate-leads/internal/model"
)

var dateCell = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)

// ParseRow classifies a result row's cells by shape. A cell with letters and
// at least one space is the name, a mm/dd/yyyy cell is the death date, and
// a lone F or M is the sex. Later cells win when several match. Unmatched
// fields stay empty, so header and filler rows yield an empty Person.
func ParseRow(cells []string) model.DeceasedRecord {
	var rec model.DeceasedRecord
	for _, raw := range cells {
		text := strings.TrimSpace(raw)
		if isName(text) {
			rec.Person = text
		}
		if dateCell.MatchString(text) {
			rec.DeathDate = text
		}
		if text == "F" || text == "M" {
			rec.Sex = text
		}
	}
	return rec
}

func isName(s string) bool {
	if !strings.Contains(s, " ") {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return r < unicode.MaxASCII && unicode.IsLetter(r)
	}) >= 0
}
