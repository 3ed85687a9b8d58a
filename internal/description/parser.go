// Package description holds the pure parts of the generation pipeline: it
// splits a generator reply into sections, renders the per-item document and
// knows where inputs and outputs live in the blob store.
package description

import (
	"strings"
	"unicode/utf8"

	"descsvc/internal/domain"
)

const (
	markerWhatToExpect = "WHAT_TO_EXPECT:"
	markerSubscribe    = "SUBSCRIBE:"
	markerTags         = "TAGS:"

	// MaxTagsLength is the cap applied to the tags section, in characters.
	MaxTagsLength = 500
	ellipsis      = "..."
)

// Literal marker spellings removed from each span. Only these two casings are
// stripped even though the boundary search ignores case.
var (
	aboutLiterals        = []string{"ABOUT:", "About:"}
	whatToExpectLiterals = []string{"WHAT_TO_EXPECT:", "What_to_Expect:"}
	subscribeLiterals    = []string{"SUBSCRIBE:", "Subscribe:"}
	tagsLiterals         = []string{"TAGS:", "Tags:"}
)

// ParseSections splits a generator reply into its four sections. The second
// return value is false when the reply did not carry all three markers after
// the first byte, in which case the whole reply is returned as About.
func ParseSections(reply string) (domain.Sections, bool) {
	wte := indexFoldASCII(reply, markerWhatToExpect)
	sub := indexFoldASCII(reply, markerSubscribe)
	tags := indexFoldASCII(reply, markerTags)

	// A marker at offset 0 is ambiguous and counts as missing.
	if wte <= 0 || sub <= 0 || tags <= 0 {
		return domain.Sections{About: reply}, false
	}

	// Out of order markers still slice; an inverted pair yields an empty span.
	return domain.Sections{
		About:        cleanSpan(between(reply, 0, wte), aboutLiterals),
		WhatToExpect: cleanSpan(between(reply, wte, sub), whatToExpectLiterals),
		Subscribe:    cleanSpan(between(reply, sub, tags), subscribeLiterals),
		Tags:         TruncateTags(cleanSpan(reply[tags:], tagsLiterals)),
	}, true
}

func between(s string, start, end int) string {
	if end <= start {
		return ""
	}
	return s[start:end]
}

// TruncateTags caps tags at MaxTagsLength characters, ending in an ellipsis
// when shortened.
func TruncateTags(tags string) string {
	if utf8.RuneCountInString(tags) <= MaxTagsLength {
		return tags
	}
	runes := []rune(tags)
	return string(runes[:MaxTagsLength-len(ellipsis)]) + ellipsis
}

func cleanSpan(span string, literals []string) string {
	for _, lit := range literals {
		span = strings.ReplaceAll(span, lit, "")
	}
	return strings.TrimSpace(span)
}

// indexFoldASCII returns the byte offset of the first ASCII case-insensitive
// match of marker in s, or -1. Offsets are exact byte positions in s.
func indexFoldASCII(s, marker string) int {
	n := len(marker)
	for i := 0; i+n <= len(s); i++ {
		match := true
		for j := 0; j < n; j++ {
			if lowerASCII(s[i+j]) != lowerASCII(marker[j]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func lowerASCII(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
