package services

import (
	"strings"
	"unicode/utf8"
)

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

// StripCodeFence removes a markdown code fence around otherwise valid JSON.
// Text without a fence is only trimmed, so applying it twice changes nothing.
func StripCodeFence(text string) string {
	clean := strings.TrimSpace(text)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}

	// Drop the opening fence together with its language tag.
	clean = strings.TrimPrefix(clean, "```")
	if newline := strings.IndexByte(clean, '\n'); newline >= 0 {
		if tag := strings.TrimSpace(clean[:newline]); !strings.ContainsAny(tag, "{[") {
			clean = clean[newline+1:]
		}
	} else {
		clean = strings.TrimPrefix(clean, "json")
	}

	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
