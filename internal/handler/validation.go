// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks a submitted email address. Returns an error
// message, or "" when valid.
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

// ValidatePhone checks a South African phone number: ten digits
// starting with 0, ignoring spaces, dashes, and parentheses.
func ValidatePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if digits == "" {
		return "Phone number is required"
	}
	if len(digits) != 10 || digits[0] != '0' {
		return "Please enter a valid 10-digit phone number"
	}
	return ""
}

// ValidateRequired checks a required text field.
func ValidateRequired(value, label string) string {
	if strings.TrimSpace(value) == "" {
		return label + " is required"
	}
	return ""
}
