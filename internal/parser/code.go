package parser

import (
	"strings"
)

const fence = "```"

// ExtractCode returns the body of the first fenced block tagged lang, or of the first untagged
// block. Text without a matching fence is returned trimmed.
func ExtractCode(text, lang string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		block   []string
		inside  bool
		skipped bool
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !strings.HasPrefix(trimmed, fence) {
			if inside {
				block = append(block, line)
			}
			continue
		}

		switch {
		case inside:
			return strings.Join(block, "\n") + "\n"
		case skipped:
			skipped = false
		case matchesLang(strings.TrimPrefix(trimmed, fence), lang):
			inside = true
		default:
			skipped = true
		}
	}

	if inside {
		return strings.Join(block, "\n") + "\n"
	}

	return strings.TrimSpace(text)
}

func matchesLang(tag, lang string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	lang = strings.ToLower(lang)

	return tag == "" || tag == lang || (lang == "go" && tag == "golang")
}
