// Package logging prepares endpoint URLs, query text and errors for log output.
package logging

import (
	"regexp"
	"strings"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log
	MaxQueryLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Basic and Bearer authorization values
	authHeaderPattern = regexp.MustCompile(`(?i)(basic|bearer)\s+[A-Za-z0-9+/=._-]{8,}`)

	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// user:pass@ in endpoint URLs; the host stays visible
	userInfoPattern = regexp.MustCompile(`://[^/@\s]+@`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeURL removes userinfo and credential parameters from an endpoint URL.
// Use this before logging any endpoint URL.
func SanitizeURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	sanitized := userInfoPattern.ReplaceAllString(rawURL, "://"+RedactedText+"@")
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// SanitizeError sanitizes error messages that might contain sensitive data.
// Transport errors frequently echo the request URL, credentials included.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = authHeaderPattern.ReplaceAllString(sanitized, "${1} "+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = userInfoPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")

	return sanitized
}

// SanitizeQuery collapses whitespace and truncates query text for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	sanitized := strings.TrimSpace(whitespacePattern.ReplaceAllString(query, " "))
	sanitized = TruncateString(sanitized, MaxQueryLogLength)
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
