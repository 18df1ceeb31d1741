package toctree

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxSectionLen caps how much of a single section survives cleaning.
const DefaultMaxSectionLen = 3000

// Clean returns a cleaned copy of the tree. The input is never mutated.
//
// Per section, in order: trim whitespace; drop entries shorter than 10
// characters; drop entries that are mostly dots (table-of-contents leader
// artifacts); truncate to maxLen with a trailing "..." marker. Lengths are
// counted in runes, not bytes. Surviving entries become bare strings.
// Cleaning preserves child topology and never increases text volume.
func Clean(node *Node, maxLen int) *CleanedNode {
	if maxLen <= 0 {
		maxLen = DefaultMaxSectionLen
	}

	cleaned := &CleanedNode{Title: node.Title}

	for _, s := range node.Sections {
		text := strings.TrimSpace(s.SectionText)
		if utf8.RuneCountInString(text) < 10 {
			continue
		}
		if mostlyDots(text) {
			continue
		}
		if utf8.RuneCountInString(text) > maxLen {
			text = truncateRunes(text, maxLen) + "..."
		}
		cleaned.Sections = append(cleaned.Sections, text)
	}

	for _, c := range node.Children {
		cleaned.Children = append(cleaned.Children, Clean(c, maxLen))
	}

	return cleaned
}

// mostlyDots reports whether more than half the characters are '.' or '…'.
func mostlyDots(s string) bool {
	var dots, total int
	for _, r := range s {
		if r == '.' || r == '…' {
			dots++
		}
		total++
	}
	return dots > total/2
}

// truncateRunes cuts s to at most n runes without splitting a rune.
func truncateRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
