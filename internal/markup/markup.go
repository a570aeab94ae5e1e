// Package markup converts Jira wiki markup into Markdown. It covers
// the constructs that show up in everyday issue text: headings, text
// effects, lists, links, quotes, code and noformat blocks, and rules.
// Unrecognized markup passes through unchanged.
package markup

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`^h([1-6])\.\s+(.*)$`)
	bulletRe    = regexp.MustCompile(`^(\*+)\s+(.*)$`)
	numberedRe  = regexp.MustCompile(`^(#+)\s+(.*)$`)
	codeOpenRe  = regexp.MustCompile(`^\{code(?::([^}]*))?\}$`)
	noformatRe  = regexp.MustCompile(`^\{noformat\}$`)
	boldRe      = regexp.MustCompile(`\*([^*\n]+)\*`)
	monospaceRe = regexp.MustCompile(`\{\{(.+?)\}\}`)
	namedLinkRe = regexp.MustCompile(`\[([^|\[\]]+)\|([^\[\]]+)\]`)
	bareLinkRe  = regexp.MustCompile(`\[(https?://[^\[\]]+)\]`)
	ruleRe      = regexp.MustCompile(`^-{4,}\s*$`)
)

// ToMarkdown converts Jira wiki markup to Markdown. It satisfies the
// transform contract used by the markdown converter; the error is
// always nil today but kept in the signature so alternative
// transforms can report failures.
func ToMarkdown(text string) (string, error) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	inCode := false
	inQuote := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Code and noformat fences pass their contents through verbatim.
		if m := codeOpenRe.FindStringSubmatch(trimmed); m != nil {
			if inCode {
				out = append(out, "```")
			} else {
				out = append(out, "```"+m[1])
			}
			inCode = !inCode
			continue
		}
		if noformatRe.MatchString(trimmed) {
			out = append(out, "```")
			inCode = !inCode
			continue
		}
		if inCode {
			out = append(out, line)
			continue
		}

		if trimmed == "{quote}" {
			inQuote = !inQuote
			continue
		}

		line = convertLine(line)
		if inQuote && trimmed != "" {
			line = "> " + line
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n"), nil
}

// convertLine rewrites a single non-code line: block prefix first,
// then inline markup.
func convertLine(line string) string {
	switch {
	case ruleRe.MatchString(line):
		return "---"
	case strings.HasPrefix(line, "bq. "):
		return "> " + convertInline(strings.TrimPrefix(line, "bq. "))
	}

	if m := headingRe.FindStringSubmatch(line); m != nil {
		return strings.Repeat("#", int(m[1][0]-'0')) + " " + convertInline(m[2])
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return strings.Repeat("  ", len(m[1])-1) + "- " + convertInline(m[2])
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return strings.Repeat("  ", len(m[1])-1) + "1. " + convertInline(m[2])
	}

	return convertInline(line)
}

func convertInline(line string) string {
	line = monospaceRe.ReplaceAllString(line, "`$1`")
	line = boldRe.ReplaceAllString(line, "**$1**")
	line = namedLinkRe.ReplaceAllStringFunc(line, func(s string) string {
		m := namedLinkRe.FindStringSubmatch(s)
		return fmt.Sprintf("[%s](%s)", m[1], m[2])
	})
	line = bareLinkRe.ReplaceAllString(line, "<$1>")
	return line
}
