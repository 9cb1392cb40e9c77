// Package pan redacts primary account numbers before they are stored, logged,
// or displayed.
package pan

import (
	"regexp"
	"strings"
)

const (
	keepFirst = 6
	keepLast  = 4

	// MinMaskLen is the shortest value Mask will redact.
	MinMaskLen = keepFirst + keepLast

	cardRunLen = 16
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// Mask keeps the first 6 and last 4 characters of s and replaces the rest
// with '*'. Values shorter than MinMaskLen are returned unchanged.
func Mask(s string) string {
	if len(s) < MinMaskLen {
		return s
	}
	return s[:keepFirst] + strings.Repeat("*", len(s)-MinMaskLen) + s[len(s)-keepLast:]
}

// MaskAll masks every maximal run of exactly 16 digits in text.
// Longer or shorter digit runs are left alone.
func MaskAll(text string) string {
	return digitRun.ReplaceAllStringFunc(text, func(run string) string {
		if len(run) != cardRunLen {
			return run
		}
		return Mask(run)
	})
}
