package items

import (
	"strings"
)

// ExtractItems recovers item names from a free-text transaction description.
//
// The first parenthesized span wins: "Grocery (Milk, Eggs, Bread)" yields
// [Milk Eggs Bread], and a single name inside parentheses is accepted.
// Without a usable span the whole description is split on commas, but the
// result only counts when it holds at least two names, so "Coffee" yields
// nothing. Nested or unbalanced parentheses are not interpreted.
func ExtractItems(description string) []string {
	if description == "" {
		return []string{}
	}

	if inner, ok := firstParenthesized(description); ok {
		if names := splitNames(inner); len(names) > 0 {
			return names
		}
	}

	names := splitNames(description)
	if len(names) < 2 {
		return []string{}
	}
	return names
}

// firstParenthesized returns the text between the first "(" that has a
// closing ")" after it on the same line.
func firstParenthesized(s string) (string, bool) {
	offset := 0
	for {
		open := strings.IndexByte(s[offset:], '(')
		if open == -1 {
			return "", false
		}
		start := offset + open + 1

		end := strings.IndexByte(s[start:], ')')
		if end == -1 {
			return "", false
		}

		inner := s[start : start+end]
		if !strings.Contains(inner, "\n") {
			return inner, true
		}
		offset = start
	}
}

func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}
