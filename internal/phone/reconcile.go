// Package phone merges skip-trace and people-search phone lists into one
// ranked contact list per lead.
package phone

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/model"
)

// SkipTraceSlots is how many numbers the skip-trace provider returns.
const SkipTraceSlots = 5

// fallbackCount is how many single-source numbers are kept when the
// providers do not corroborate each other.
const fallbackCount = 2

// Normalize strips everything but digits.
func Normalize(number string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
}

// Result is the outcome of reconciling one lead's phone lists.
type Result struct {
	Numbers    []string
	Confidence model.PhoneConfidence
}

// Resolved reports whether any usable number was found.
func (r Result) Resolved() bool {
	return len(r.Numbers) > 0
}

// Reconcile merges the two provider lists. Nil means the provider returned
// nothing. Numbers present in both lists rank High; otherwise the first two
// non-empty skip-trace numbers are kept at Medium.
func Reconcile(skipTrace, peopleSearch []string) Result {
	if skipTrace == nil && peopleSearch == nil {
		return Result{}
	}

	skip := make([]string, 0, SkipTraceSlots)
	inSkip := make(map[string]bool, SkipTraceSlots)
	for i, n := range skipTrace {
		if i >= SkipTraceSlots {
			break
		}
		clean := Normalize(n)
		skip = append(skip, clean)
		if clean != "" {
			inSkip[clean] = true
		}
	}

	var matched []string
	seen := make(map[string]bool)
	for _, n := range peopleSearch {
		clean := Normalize(n)
		if clean == "" || seen[clean] || !inSkip[clean] {
			continue
		}
		seen[clean] = true
		matched = append(matched, clean)
	}
	if len(matched) > 0 {
		return Result{Numbers: matched, Confidence: model.ConfidenceHigh}
	}

	var fallback []string
	for _, n := range skip {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		fallback = append(fallback, n)
		if len(fallback) == fallbackCount {
			break
		}
	}
	if len(fallback) == 0 {
		return Result{}
	}
	return Result{Numbers: fallback, Confidence: model.ConfidenceMedium}
}

// Apply reconciles a lead's provider phone lists in place. A lead with no
// usable number keeps an empty list, no confidence, and is marked
// UnresolvableContact unless an earlier stage already degraded it.
func Apply(lead *model.EnrichedLead) {
	log := zap.L().With(zap.String("person", lead.Person))

	if lead.SkipEnginePhoneNumbers == nil && lead.EndatoPhoneNumbers == nil {
		log.Debug("phone: no provider numbers to reconcile")
	}

	res := Reconcile(lead.SkipEnginePhoneNumbers, lead.EndatoPhoneNumbers)
	lead.CleanedNumbers = res.Numbers
	lead.PhoneNumberConfidence = res.Confidence
	if lead.CleanedNumbers == nil {
		lead.CleanedNumbers = []string{}
	}

	switch {
	case !res.Resolved():
		if lead.Degradation == model.DegradationNone {
			lead.Degradation = model.DegradationUnresolvableContact
		}
		log.Debug("phone: unresolvable contact")
	case res.Confidence == model.ConfidenceMedium:
		log.Debug("phone: no cross-provider match, using skip trace numbers",
			zap.Int("numbers", len(res.Numbers)),
		)
	}
}

// ApplyAll reconciles every lead in the slice.
func ApplyAll(leads []model.EnrichedLead) {
	for i := range leads {
		Apply(&leads[i])
	}
}
