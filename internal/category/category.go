// Package category canonicalizes raw preference-category labels onto the
// application-level category vocabulary. Source labels drift across nine
// years of document revisions in spacing, non-breaking-space encoding, and
// phrasing; canonicalizing before lookup collapses all variants to one key.
package category

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// AppCategory is a canonical application-level category identifier.
type AppCategory string

// The closed category vocabulary. Raw labels map onto these and nothing else.
const (
	EB1          AppCategory = "EB1"
	EB2          AppCategory = "EB2"
	EB3          AppCategory = "EB3"
	OtherWorkers AppCategory = "Other Workers"
	EB4          AppCategory = "EB4"
	EB5          AppCategory = "EB5"
	F1           AppCategory = "F1"
	F2A          AppCategory = "F2A"
	F2B          AppCategory = "F2B"
	F3           AppCategory = "F3"
	F4           AppCategory = "F4"
)

// Group separates the two bulletin table families.
type Group string

const (
	GroupEmployment Group = "employment"
	GroupFamily     Group = "family"
)

var groupByCategory = map[AppCategory]Group{
	EB1: GroupEmployment, EB2: GroupEmployment, EB3: GroupEmployment,
	OtherWorkers: GroupEmployment, EB4: GroupEmployment, EB5: GroupEmployment,
	F1: GroupFamily, F2A: GroupFamily, F2B: GroupFamily,
	F3: GroupFamily, F4: GroupFamily,
}

// Valid reports whether c belongs to the closed vocabulary.
func (c AppCategory) Valid() bool {
	_, ok := groupByCategory[c]
	return ok
}

// GroupOf returns the table group a category belongs to.
func GroupOf(c AppCategory) Group {
	return groupByCategory[c]
}

// EmploymentCategories lists the employment vocabulary in preference order.
func EmploymentCategories() []AppCategory {
	return []AppCategory{EB1, EB2, EB3, OtherWorkers, EB4, EB5}
}

// FamilyCategories lists the family vocabulary in preference order.
func FamilyCategories() []AppCategory {
	return []AppCategory{F1, F2A, F2B, F3, F4}
}

// Normalize canonicalizes a raw label for table lookup: Unicode-decompose,
// strip every separator-class rune (ordinary spaces, non-breaking spaces,
// and decomposed-accent spacing artifacts alike), and lower-case.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range norm.NFKD.String(raw) {
		if unicode.In(r, unicode.Zs, unicode.Zl, unicode.Zp) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
