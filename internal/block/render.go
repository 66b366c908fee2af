package block

import (
	"regexp"
	"strings"
)

// DefaultCheckMessage is shown for a CHECK block with no message.
const DefaultCheckMessage = "Great work!"

// CheckMessage returns the text a CHECK block displays.
func CheckMessage(c Check) string {
	if strings.TrimSpace(c.Message) == "" {
		return DefaultCheckMessage
	}
	return c.Message
}

// Span is a run of THEORY text. A Break span marks a line break and
// carries no text.
type Span struct {
	Text  string
	Bold  bool
	Break bool
}

var boldPattern = regexp.MustCompile(`(?s)\*\*(.*?)\*\*`)

// FormatTheory turns THEORY markup into spans: **x** becomes bold, even
// across a line break, and newlines become Break spans. Text is passed
// through verbatim; THEORY content is written only by teachers.
func FormatTheory(text string) []Span {
	var spans []Span
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(text, -1) {
		spans = appendLines(spans, text[last:m[0]], false)
		spans = appendLines(spans, text[m[2]:m[3]], true)
		last = m[1]
	}
	return appendLines(spans, text[last:], false)
}

func appendLines(spans []Span, text string, bold bool) []Span {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			spans = append(spans, Span{Break: true})
		}
		if line != "" {
			spans = append(spans, Span{Text: line, Bold: bold})
		}
	}
	return spans
}
