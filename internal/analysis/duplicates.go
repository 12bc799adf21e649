package analysis

import (
	"strings"

	"cloud.google.com/go/civil"
)

// VerifyDuplicates keeps only the duplicate groups that satisfy the rule the
// model was given: at least two entries, identical amount to the cent and the
// same calendar day. An entry whose amount or date cannot be read fails its
// whole group. It returns the kept groups and how many were discarded.
func VerifyDuplicates(groups [][]DuplicateEntry) ([][]DuplicateEntry, int) {
	kept := make([][]DuplicateEntry, 0, len(groups))
	for _, g := range groups {
		if isExactDuplicateGroup(g) {
			kept = append(kept, g)
		}
	}
	return kept, len(groups) - len(kept)
}

func isExactDuplicateGroup(group []DuplicateEntry) bool {
	if len(group) < 2 {
		return false
	}

	first := group[0]
	if !first.amountValid {
		return false
	}
	day, ok := parseEntryDate(first.Date)
	if !ok {
		return false
	}
	cents := first.amount.Round(2)

	for _, e := range group[1:] {
		if !e.amountValid || !e.amount.Round(2).Equal(cents) {
			return false
		}
		d, ok := parseEntryDate(e.Date)
		if !ok || d != day {
			return false
		}
	}
	return true
}

// parseEntryDate reads "YYYY-MM-DD", tolerating a trailing time part.
func parseEntryDate(s string) (civil.Date, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return civil.Date{}, false
	}
	return d, true
}
