package prediction

import (
	"regexp"
	"strconv"
	"strings"
)

// musiqueTokenPattern matches one element of a PMU musique string: a
// rank-plus-letter token ("1p", "4a"), a non-finish marker ("Da", "Tab"),
// or a parenthesized two-digit year marker ("(24)").
var musiqueTokenPattern = regexp.MustCompile(`\(\d{2}\)|\d+[a-zA-Z]|[DT]a[a-z]?`)

var yearMarkerPattern = regexp.MustCompile(`^\((\d{2})\)$`)

// DecodeMusique parses a compact form-history string into year-bucketed
// outcome tokens. Tokens before any "(YY)" marker belong to currentYear;
// each marker switches the active year for subsequent tokens. Tokens keep
// their left-to-right (most recent first) order within a year. Malformed
// fragments are skipped; an empty musique yields an empty map, which callers
// must treat as "no form known", not "proven bad".
func DecodeMusique(musique string, currentYear int) map[int][]string {
	results := make(map[int][]string)
	if strings.TrimSpace(musique) == "" {
		return results
	}

	activeYear := currentYear
	for _, token := range musiqueTokenPattern.FindAllString(musique, -1) {
		if m := yearMarkerPattern.FindStringSubmatch(token); m != nil {
			yy, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			activeYear = 2000 + yy
			continue
		}
		results[activeYear] = append(results[activeYear], token)
	}

	return results
}

// tokenRank extracts the numeric finishing position from a musique token,
// returning 0 when the token carries no rank (non-finish markers).
func tokenRank(token string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, token)
	if digits == "" {
		return 0
	}
	rank, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return rank
}

// isNonFinish reports whether the token marks a disqualification or fall
// (PMU notation: "Da" disqualified, "Ta"/"Tab" fell) rather than a placing.
func isNonFinish(token string) bool {
	return strings.HasPrefix(token, "D") || strings.HasPrefix(token, "T")
}
