// Package names canonicalizes registry and assessor personal names for
// property searches.
package names

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies which search variant a Variant is.
type Kind int

const (
	// Whole keeps every token of the source name.
	Whole Kind = iota + 1
	// Initialed collapses the third token to its first letter.
	Initialed
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Whole:
		return "whole"
	case Initialed:
		return "initialed"
	default:
		return "unknown"
	}
}

// Variant is one normalized search form of a "LAST FIRST [MIDDLE...]" name.
type Variant struct {
	Kind   Kind
	Tokens []string
}

// Query returns the search term in source order, which is how the assessor
// indexes owner names.
func (v Variant) Query() string {
	return strings.Join(v.Tokens, " ")
}

// Last returns the surname token.
func (v Variant) Last() string {
	if len(v.Tokens) == 0 {
		return ""
	}
	return v.Tokens[0]
}

// First returns the given-name token.
func (v Variant) First() string {
	if len(v.Tokens) < 2 {
		return ""
	}
	return v.Tokens[1]
}

// Display reconstructs "First Last" from the source order.
func (v Variant) Display() string {
	return TitleCase(strings.TrimSpace(v.First() + " " + v.Last()))
}

// Tokens splits a full name on whitespace.
func Tokens(full string) []string {
	return strings.Fields(full)
}

// Variants returns the search variants for a full name. Two-token names get
// only the whole-name variant; names with three or more tokens also get the
// initialed variant, since registry and assessor spellings of middle names
// frequently diverge. Names with fewer than two tokens are not searchable.
func Variants(full string) []Variant {
	toks := Tokens(full)
	if len(toks) < 2 {
		return nil
	}

	out := []Variant{{Kind: Whole, Tokens: toks}}
	if len(toks) >= 3 {
		out = append(out, Variant{
			Kind:   Initialed,
			Tokens: []string{toks[0], toks[1], firstLetter(toks[2])},
		})
	}
	return out
}

func firstLetter(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// TitleCase lowercases s and capitalizes each word. A Caser carries state,
// so one is built per call.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// SwapToFirstLast turns an assessor-style "LAST FIRST" into "First Last".
// A single token is only title-cased; extra tokens after the first name are
// dropped.
func SwapToFirstLast(s string) string {
	toks := Tokens(s)
	switch len(toks) {
	case 0:
		return ""
	case 1:
		return TitleCase(toks[0])
	default:
		return TitleCase(toks[1] + " " + toks[0])
	}
}

// FirstLast returns the title-cased first and last name of a registry-style
// name, or empty strings when the name has fewer than two tokens.
func FirstLast(full string) (first, last string) {
	toks := Tokens(full)
	if len(toks) < 2 {
		return "", ""
	}
	return TitleCase(toks[1]), TitleCase(toks[0])
}
