package utils

import (
	"net/mail"
	"strings"
)

// NormalizeEmail returns the canonical (trimmed, lower-cased) form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the normalized address parses as a bare address.
func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// UniqueEmails normalizes and deduplicates addresses, keeping first-seen order.
func UniqueEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	result := make([]string, 0, len(emails))

	for _, e := range emails {
		e = NormalizeEmail(e)
		if e == "" {
			continue
		}
		if _, exists := seen[e]; exists {
			continue
		}
		seen[e] = struct{}{}
		result = append(result, e)
	}

	return result
}
