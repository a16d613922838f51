package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// countryToISO2 maps the country spellings seen in provider templates to
// ISO 3166-1 alpha-2 codes. Local-language spellings show up in forwarded
// channel-manager mails, so both variants are listed.
var countryToISO2 = map[string]string{
	"france":          "FR",
	"croatia":         "HR",
	"hrvatska":        "HR",
	"italy":           "IT",
	"italia":          "IT",
	"germany":         "DE",
	"deutschland":     "DE",
	"poland":          "PL",
	"polska":          "PL",
	"united kingdom":  "GB",
	"great britain":   "GB",
	"uk":              "GB",
	"czech republic":  "CZ",
	"czechia":         "CZ",
	"austria":         "AT",
	"osterreich":      "AT",
	"österreich":      "AT",
	"netherlands":     "NL",
	"the netherlands": "NL",
	"nederland":       "NL",
	"serbia":          "RS",
	"srbija":          "RS",
	"montenegro":      "ME",
	"crna gora":       "ME",
	"slovakia":        "SK",
	"slovensko":       "SK",
	"slovenia":        "SI",
	"slovenija":       "SI",
	"finland":         "FI",
	"suomi":           "FI",
	"spain":           "ES",
	"espana":          "ES",
	"españa":          "ES",
}

var reTrailingParens = regexp.MustCompile(`\s*\(.*?\)\s*$`)

// CountryToISO2 resolves a free-form country value to an ISO2 code. Bare
// two-letter values pass through uppercased; trailing parentheticals like
// "Croatia (Hrvatska)" are stripped before the table lookup.
func CountryToISO2(value string) (string, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return "", false
	}

	if len(cleaned) == 2 && isAlpha(cleaned) {
		return strings.ToUpper(cleaned), true
	}

	key := strings.ToLower(cleaned)
	key = strings.TrimSpace(reTrailingParens.ReplaceAllString(key, ""))

	iso2, ok := countryToISO2[key]

	return iso2, ok
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return len(s) > 0
}
