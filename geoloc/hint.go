// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"strings"
	"unicode/utf8"

	"github.com/jcodagnone/fotogeo/utils"
)

const maxHintLength = 500

// placeholderHints are hint strings that carry no location information.
// They come from upstream callers that fill the hint field with UI
// placeholders or detector output labels; geocoding them would produce
// garbage candidates, so they must never reach a geocoder.
var placeholderHints = map[string]bool{
	"":                 true,
	"none":             true,
	"null":             true,
	"unknown":          true,
	"n/a":              true,
	"detected objects": true,
	"не определено":    true,
	"нет":              true,
}

// SanitizeHint trims and truncates a caller hint. The returned string may
// still be a placeholder; use UsableHint to decide whether it can be
// geocoded.
func SanitizeHint(hint string) string {
	hint = strings.TrimSpace(hint)
	if utf8.RuneCountInString(hint) > maxHintLength {
		runes := []rune(hint)
		hint = string(runes[:maxHintLength])
	}

	return hint
}

// UsableHint reports whether a hint is real location text: non-empty, not a
// known placeholder, and containing at least one letter or digit.
func UsableHint(hint string) bool {
	folded := utils.LowerASCIIFolding(SanitizeHint(hint))
	if placeholderHints[folded] {
		return false
	}

	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r >= 'а' && r <= 'я') {
			return true
		}
	}

	return false
}
