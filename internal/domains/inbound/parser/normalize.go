package parser

import (
	"html"
	"regexp"
	"strings"
)

var (
	reStyleBlock = regexp.MustCompile(`(?is)<style.*?>.*?</style>`)
	reScriptBlk  = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	reHTMLCmnt   = regexp.MustCompile(`(?s)<!--.*?-->`)
	reLineBreak  = regexp.MustCompile(`(?is)<br\s*/?>|</p\s*>|</div\s*>|</tr\s*>|</li\s*>`)
	reCellBreak  = regexp.MustCompile(`(?is)</td\s*>`)
	reAnyTag     = regexp.MustCompile(`(?s)<[^>]+>`)
	reURLLine    = regexp.MustCompile(`^<https?://.*?>\s*$`)
)

var htmlMarkers = []string{"<html", "<body", "<div", "<style", "<!doctype"}

// LooksLikeHTML reports whether a message body is HTML rather than plain
// text. Booking providers send both, sometimes with an empty text part.
func LooksLikeHTML(body string) bool {
	lowered := strings.ToLower(body)
	for _, marker := range htmlMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}

	return false
}

// HTMLToText flattens an HTML body into plain text. Block-level closers
// become newlines so line-oriented extraction keeps working.
func HTMLToText(body string) string {
	text := reStyleBlock.ReplaceAllString(body, " ")
	text = reScriptBlk.ReplaceAllString(text, " ")
	text = reHTMLCmnt.ReplaceAllString(text, " ")
	text = reLineBreak.ReplaceAllString(text, "\n")
	text = reCellBreak.ReplaceAllString(text, " ")
	text = reAnyTag.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")

	return text
}

// Normalize picks the richer of the two body variants, flattens HTML, and
// splits the result into trimmed non-empty lines. Tracking-pixel lines that
// hold nothing but a bracketed URL are dropped. The HTML body wins when both
// are present since providers often ship an empty or truncated text part.
func Normalize(bodyText, bodyHTML string) []string {
	body := bodyText
	if bodyHTML != "" {
		body = bodyHTML
	}

	if LooksLikeHTML(body) {
		body = HTMLToText(body)
	}

	lines := make([]string, 0, 64)

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || reURLLine.MatchString(line) {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}
