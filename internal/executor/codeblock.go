package executor

import "strings"

// scriptLanguageTags are the fence annotations accepted as script blocks —
// the runtime's "language" is declarative JSON (see internal/scriptruntime),
// so both a literal "json" tag and an "script" alias are accepted, per
// spec.md §4.3 step 6's "multiple accepted".
var scriptLanguageTags = map[string]bool{
	"json":   true,
	"script": true,
}

// extractScriptBlock finds every fenced code block in text annotated with
// one of scriptLanguageTags and concatenates their interiors with a blank
// line between them. A malformed or unterminated fence is still taken
// verbatim through end-of-text rather than discarded — validating the
// content is the script runtime's job, not this extraction step. Returns
// ("", false) when no matching fence is present.
func extractScriptBlock(text string) (string, bool) {
	var blocks []string
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			break
		}
		afterFence := rest[start+3:]
		lineEnd := strings.IndexByte(afterFence, '\n')
		var lang, body string
		if lineEnd < 0 {
			lang = strings.TrimSpace(afterFence)
			body = ""
			rest = ""
		} else {
			lang = strings.TrimSpace(afterFence[:lineEnd])
			body = afterFence[lineEnd+1:]
			if end := strings.Index(body, "```"); end >= 0 {
				rest = body[end+3:]
				body = body[:end]
			} else {
				rest = ""
			}
		}
		if scriptLanguageTags[strings.ToLower(lang)] {
			blocks = append(blocks, strings.TrimRight(body, "\n"))
		}
		if rest == "" {
			break
		}
	}
	if len(blocks) == 0 {
		return "", false
	}
	return strings.Join(blocks, "\n\n"), true
}
