package notify

import "strings"

// Payload is the already-resolved display content of one notification.
// Channels never do locale lookups; whoever builds a Payload hands over
// final strings.
type Payload struct {
	Title    string
	Message  string
	Subtitle string
}

// Flatten renders the payload as a single line for text-only channels:
// title, then ": "+message when both are present, with the subtitle
// appended as " (subtitle)".
func (p Payload) Flatten() string {
	var b strings.Builder
	switch {
	case p.Title != "" && p.Message != "":
		b.WriteString(p.Title)
		b.WriteString(": ")
		b.WriteString(p.Message)
	case p.Title != "":
		b.WriteString(p.Title)
	default:
		b.WriteString(p.Message)
	}
	if p.Subtitle != "" {
		b.WriteString(" (")
		b.WriteString(p.Subtitle)
		b.WriteString(")")
	}
	return b.String()
}

// IsZero reports an empty payload; channels refuse to send one.
func (p Payload) IsZero() bool {
	return p.Title == "" && p.Message == ""
}

// SanitizeText defuses user-supplied text before it is embedded in an OS
// command string: backslashes and double quotes are escaped, line breaks
// and tabs collapse to single spaces. This is injection defusal for the
// quoted osascript command, not display formatting, and it must run on
// every field before command construction.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", " ",
		"\r", "",
		"\t", " ",
	)
	return strings.TrimSpace(r.Replace(text))
}
