package scanner

import (
	"sort"
	"strings"
)

// DefaultCategoryAliases maps canonical category names to the spellings the
// exchange uses for them. Config may override or extend this set.
func DefaultCategoryAliases() map[string][]string {
	return map[string][]string{
		"CRYPTO":    {"CRYPTO", "CRYPTOCURRENCY"},
		"FINANCIAL": {"FINANCIAL", "FINANCE", "FINANCIALS"},
		"ECONOMICS": {"ECONOMICS", "ECONOMY"},
	}
}

// expandCategories resolves the requested category names against the alias
// table and returns the full set of exchange category spellings to accept.
// Matching is case-insensitive; a request matches a canonical name or any of
// its aliases and pulls in the whole alias group.
func expandCategories(aliases map[string][]string, requested []string) map[string]bool {
	allowed := make(map[string]bool)
	for _, req := range requested {
		req = strings.ToUpper(strings.TrimSpace(req))
		if req == "" {
			continue
		}
		for canonical, names := range aliases {
			match := req == canonical
			for _, n := range names {
				if req == strings.ToUpper(n) {
					match = true
					break
				}
			}
			if match {
				allowed[canonical] = true
				for _, n := range names {
					allowed[strings.ToUpper(n)] = true
				}
			}
		}
	}
	return allowed
}

// sortedSet returns the set's members in lexical order for stable output.
func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
