package credential

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/protectwatch/internal/model"
)

// licenseGrammar is two letters then exactly eight digits, after normalization.
var licenseGrammar = regexp.MustCompile(`^[A-Z]{2}[0-9]{8}$`)

// NormalizeLicenseNumber removes all whitespace and uppercases ASCII letters.
// Other runes pass through unchanged so they fail the grammar.
func NormalizeLicenseNumber(number string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case 'a' <= r && r <= 'z':
			return r - 'a' + 'A'
		}
		return r
	}, number)
}

// ParseLicenseNumber normalizes number and resolves its prefix to a category.
func (e *Engine) ParseLicenseNumber(number string) (model.LicenseCategory, string, bool) {
	n := NormalizeLicenseNumber(number)
	if !licenseGrammar.MatchString(n) {
		return "", n, false
	}
	spec, ok := e.cat.CategoryByCode(n[:2])
	if !ok {
		return "", n, false
	}
	return spec.Category, n, true
}

// ValidateLicenseFormat reports whether number is a well-formed licence number for category.
// Case and whitespace are ignored; anything else must match exactly.
func (e *Engine) ValidateLicenseFormat(number string, category model.LicenseCategory) bool {
	got, _, ok := e.ParseLicenseNumber(number)
	return ok && got == category
}
