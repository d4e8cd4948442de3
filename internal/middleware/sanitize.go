package middleware

import (
	"regexp"
	"strings"
	"unicode"
)

// SanitizeConfig contains configuration for input sanitization
type SanitizeConfig struct {
	MaxStringLength int  // Maximum allowed length in runes
	AllowNewlines   bool // Keep \n for multi-line fields (address, note)
}

// DefaultSanitizeConfig returns the configuration for single-line fields
func DefaultSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{
		MaxStringLength: 500,
		AllowNewlines:   false,
	}
}

// MultilineSanitizeConfig is used for address and footer note
func MultilineSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{
		MaxStringLength: 2000,
		AllowNewlines:   true,
	}
}

// SanitizeString cleans a form value before it reaches the document:
// null bytes and control characters are removed and the result is truncated.
// Surrounding whitespace is left for the parser to trim.
func SanitizeString(input string, config SanitizeConfig) string {
	input = strings.ReplaceAll(input, "\x00", "")

	if config.AllowNewlines {
		input = strings.ReplaceAll(input, "\r\n", "\n")
	}

	var b strings.Builder
	n := 0
	for _, r := range input {
		if config.MaxStringLength > 0 && n >= config.MaxStringLength {
			break
		}
		if unicode.IsControl(r) && !(r == '\t' || (config.AllowNewlines && r == '\n')) {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// estimateIDPattern matches ids produced by the estimate service
var estimateIDPattern = regexp.MustCompile(`^[a-f0-9]{8}$`)

// ValidateEstimateID reports whether id can name a stored document
func ValidateEstimateID(id string) bool {
	return estimateIDPattern.MatchString(id)
}

// removeControlChars removes control characters from a string
func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SanitizeHeaderValue strips characters that cannot appear in a response header
func SanitizeHeaderValue(v string) string {
	return strings.TrimSpace(removeControlChars(v))
}
