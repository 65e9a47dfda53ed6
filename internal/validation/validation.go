// Package validation provides input shape checks and output sanitizers.
//
// Every function is pure and total: any string, including the empty one, is a
// legal argument and nothing panics. The empty string plays the role of a
// missing value and is never valid where a value is required.
package validation

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation patterns
var (
	emailPattern        = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern        = regexp.MustCompile(`^[0-9]{10,15}$`)
	usernamePattern     = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	alphanumericPattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
	phoneSeparators     = regexp.MustCompile(`[\s-]`)
)

// Roles a principal may hold.
var validRoles = map[string]bool{
	"student":  true,
	"employer": true,
	"admin":    true,
}

// Statuses a job application may be in.
var validApplicationStatuses = map[string]bool{
	"applied":     true,
	"interviewed": true,
	"accepted":    true,
	"rejected":    true,
}

// IsValidEmail reports whether s looks like local@domain.tld with a letters-only TLD.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPhone strips whitespace and hyphens and requires 10-15 digits.
func IsValidPhone(s string) bool {
	if s == "" {
		return false
	}
	return phonePattern.MatchString(phoneSeparators.ReplaceAllString(s, ""))
}

// IsValidUsername requires 3-20 characters of letters, digits or underscore.
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// IsAlphanumeric reports whether s contains only letters, digits and spaces.
func IsAlphanumeric(s string) bool {
	return alphanumericPattern.MatchString(s)
}

// IsNotBlank reports whether s has at least one non-whitespace character.
func IsNotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsLengthValid checks the character count of s against inclusive bounds.
func IsLengthValid(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// IsIntInRange checks value against inclusive bounds.
func IsIntInRange(value, min, max int) bool {
	return value >= min && value <= max
}

// SanitizeForHTML entity-encodes < > & ' " for safe inclusion in HTML text.
func SanitizeForHTML(s string) string {
	if s == "" {
		return ""
	}
	return html.EscapeString(s)
}

// SanitizeForHTMLAttribute encodes s for use inside a quoted HTML attribute value.
func SanitizeForHTMLAttribute(s string) string {
	if s == "" {
		return ""
	}
	return template.HTMLEscapeString(s)
}

// SanitizeForJavaScript encodes s for use inside a JavaScript string literal.
func SanitizeForJavaScript(s string) string {
	if s == "" {
		return ""
	}
	return template.JSEscapeString(s)
}

// FileExtension returns the text after the last dot of name, or "" when there
// is none. A leading dot (".bashrc") or trailing dot ("file.") is not an extension.
func FileExtension(name string) string {
	lastDot := strings.LastIndex(name, ".")
	if lastDot > 0 && lastDot < len(name)-1 {
		return name[lastDot+1:]
	}
	return ""
}

// IsValidFileExtension matches the extension of name case-insensitively against
// allowed. Names without an extension are rejected.
func IsValidFileExtension(name string, allowed []string) bool {
	ext := FileExtension(name)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(ext, strings.TrimPrefix(a, ".")) {
			return true
		}
	}
	return false
}

// IsValidRole reports exact, case-sensitive membership in {student, employer, admin}.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// IsValidApplicationStatus reports exact, case-sensitive membership in
// {applied, interviewed, accepted, rejected}.
func IsValidApplicationStatus(status string) bool {
	return validApplicationStatuses[status]
}
