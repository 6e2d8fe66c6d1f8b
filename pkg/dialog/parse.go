package dialog

import (
	"regexp"
	"strings"
)

// ParsedReply is one assistant reply split into the spoken dialogue
// part and the correction/feedback part.
type ParsedReply struct {
	Response string
	Feedback string
}

// The model is instructed to structure replies with these section
// headers. Matching is case-insensitive because models occasionally
// vary the casing.
var (
	responseMarker = regexp.MustCompile(`(?i)\[RESPONSE\]`)
	feedbackMarker = regexp.MustCompile(`(?i)\[FEEDBACK\]`)
)

// Parse splits a raw reply on the literal section markers. A reply
// without any marker is treated as pure dialogue. Only the Response
// part is ever synthesized to speech.
func Parse(text string) ParsedReply {
	ri := responseMarker.FindStringIndex(text)
	fi := feedbackMarker.FindStringIndex(text)

	switch {
	case ri == nil && fi == nil:
		return ParsedReply{Response: text}
	case fi == nil:
		return ParsedReply{Response: strings.TrimSpace(text[ri[1]:])}
	case ri == nil:
		// Feedback marker only: everything before it is dialogue.
		return ParsedReply{
			Response: strings.TrimSpace(text[:fi[0]]),
			Feedback: strings.TrimSpace(text[fi[1]:]),
		}
	case ri[1] <= fi[0]:
		return ParsedReply{
			Response: strings.TrimSpace(text[ri[1]:fi[0]]),
			Feedback: strings.TrimSpace(text[fi[1]:]),
		}
	default:
		// Sections in reverse order.
		return ParsedReply{
			Response: strings.TrimSpace(text[ri[1]:]),
			Feedback: strings.TrimSpace(text[fi[1]:ri[0]]),
		}
	}
}
