package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxTitleRunes bounds generated session names.
const maxTitleRunes = 80

// titleTrimSet holds quote and markdown emphasis characters models wrap titles in.
const titleTrimSet = "*_`\"'“” "

// TitlePrompt builds the instruction used to name a new session.
func TitlePrompt(seed string) string {
	return fmt.Sprintf(
		"Provide a short and descriptive session name for this chat about \"%s\". Return just one name only and nothing else.",
		seed)
}

// CleanTitle normalizes a model-generated title: it strips code fences,
// keeps the first non-empty line, removes surrounding quotes and markdown
// emphasis, and clips to maxTitleRunes. May return "".
func CleanTitle(raw string) string {
	title := stripMarkdownCodeBlocks(raw)

	for _, line := range strings.Split(title, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			title = line
			break
		}
	}

	title = strings.TrimSpace(title)
	title = strings.TrimLeft(title, "# ")
	title = strings.TrimSpace(strings.Trim(title, titleTrimSet))

	return ClipRunes(title, maxTitleRunes)
}

// ClipRunes truncates s to at most n runes.
func ClipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// stripMarkdownCodeBlocks removes markdown code block markers from a response.
// Handles patterns like ```text\n...\n``` or ```\n...\n```
func stripMarkdownCodeBlocks(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		// Drop a language tag on the fence line.
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 && !strings.ContainsAny(trimmed[:i], " \t") {
			trimmed = trimmed[i+1:]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}
