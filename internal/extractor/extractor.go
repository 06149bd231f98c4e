// Package extractor recovers a clean Subject/Body marketing email from the
// loosely-structured streaming payload of the generative agent. The upstream
// format has drifted across integration attempts, so extraction degrades
// through a ladder of strategies and always returns a usable email, falling
// back to deterministic mock content when nothing can be recovered.
package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// MaxRawLength bounds the verbatim raw-buffer result when no email structure
// can be found, to keep memory and UI rendering cost sane.
const MaxRawLength = 10000

// TruncationMarker is appended when a raw buffer is hard-truncated.
const TruncationMarker = "...[truncated]"

// endMarkers are trailing-noise markers observed after the email proper:
// agent trace frames, tool telemetry and analysis commentary.
var endMarkers = []string{
	"This email campaign highlights",
	"The Wanderly Team</document_content>",
	"<function_results>",
	"<result>",
	"<tool_name>",
	"<stdout>",
	`"system":`,
}

// closingSalutations end the email body in the line-scan recovery path.
var closingSalutations = []string{
	"Best regards",
	"Sincerely",
	"Warm regards",
	"The Wanderly Team",
}

var (
	subjectLineRe  = regexp.MustCompile(`Subject: ([^\n]+)`)
	emailSpanRe    = regexp.MustCompile(`(?s)Subject: .*?(?:Best regards,|Sincerely,|Warm regards,|The Wanderly Team).*?(?:\n\n|$)`)
	callToActionRe = regexp.MustCompile(`(?s)<call_to_action>\s*(.*?)\s*</call_to_action>`)
)

// placeholderSubstitutions maps literal placeholder tokens the agent leaves in
// generated copy to human-readable text.
var placeholderSubstitutions = map[string]string{
	"[Customer]":    "Valued Wanderly Traveler",
	"[Member/Gold]": "Gold",
	"[Book Now]":    "Book Now at https://demobooking.demo.co",
}

// Extractor normalizes raw agent responses into ExtractedEmail values.
type Extractor struct {
	tokens TokenCounter
}

// New creates an Extractor using the given token counter. A nil counter
// falls back to the approximate counter.
func New(tokens TokenCounter) *Extractor {
	if tokens == nil {
		tokens = ApproxTokenCounter{}
	}
	return &Extractor{tokens: tokens}
}

// Extract consumes the event sequence exactly once, in arrival order, and
// returns a clean email. A nil response means live extraction is unavailable
// (agent identity not configured, or the invocation failed upstream); the
// pre-rendered fallback is returned verbatim with token counts computed over
// it. Extract never fails: every path yields a usable ExtractedEmail.
func (x *Extractor) Extract(raw *AgentResponse, prompt, fallback string) ExtractedEmail {
	if raw == nil {
		return x.finishMock(prompt, fallback)
	}

	var byteBuf, msgBuf, rawBuf strings.Builder
	for _, ev := range raw.Events {
		switch e := ev.(type) {
		case ByteChunk:
			if !utf8.Valid(e.Bytes) {
				logger.Warn("dropping byte chunk with invalid UTF-8", "len", len(e.Bytes))
			} else {
				byteBuf.Write(e.Bytes)
			}
		case StructuredMessageChunk:
			for _, text := range e.Texts {
				msgBuf.WriteString(text)
			}
		}
		rawBuf.WriteString(ev.Raw())
	}

	// Byte chunks are authoritative when present; the structured message
	// shape only appears on older agent builds.
	candidate := byteBuf.String()
	if candidate == "" {
		candidate = msgBuf.String()
	}
	if candidate == "" {
		candidate = recoverFromRaw(rawBuf.String())
	}
	if candidate == "" {
		return x.finishMock(prompt, fallback)
	}

	subject, body := x.postProcess(candidate)
	return ExtractedEmail{
		Subject:     subject,
		Body:        body,
		TokenCounts: x.usage(prompt, body),
	}
}

func (x *Extractor) finishMock(prompt, fallback string) ExtractedEmail {
	subject, body := x.postProcess(fallback)
	return ExtractedEmail{
		Subject: subject,
		Body:    body,
		// Counts cover the exact fallback text, not the post-split body.
		TokenCounts: x.usage(prompt, fallback),
		Mock:        true,
	}
}

func (x *Extractor) usage(prompt, body string) Usage {
	in := x.tokens.Count(prompt)
	out := x.tokens.Count(body)
	return Usage{Input: in, Output: out, Total: in + out}
}

// recoverFromRaw applies the pattern ladder to the serialized event buffer.
// First match wins; an empty return means nothing at all was accumulated.
func recoverFromRaw(raw string) string {
	if raw == "" {
		return ""
	}

	// A Subject: line anchors the email; everything after it is candidate
	// text, trimmed at the first trailing-noise marker.
	if m := subjectLineRe.FindStringIndex(raw); m != nil {
		return trimTrailingNoise(raw[m[0]:])
	}

	// No standalone subject line: look for a full Subject..salutation span.
	if span := emailSpanRe.FindString(raw); span != "" {
		return strings.TrimSpace(span)
	}

	// Line scan: capture from the first Subject: line through one line past
	// the first closing salutation.
	if captured := scanLines(raw); captured != "" {
		return captured
	}

	// No structural markers at all: hand back the buffer verbatim, bounded.
	if len(raw) > MaxRawLength {
		return raw[:MaxRawLength] + TruncationMarker
	}
	return raw
}

// trimTrailingNoise cuts the candidate at the first end marker, backing up to
// the nearest preceding blank-line boundary so no partial sentence survives.
func trimTrailingNoise(candidate string) string {
	for _, marker := range endMarkers {
		idx := strings.Index(candidate, marker)
		if idx <= 0 {
			continue
		}
		if lastBlank := strings.LastIndex(candidate[:idx], "\n\n"); lastBlank > 0 {
			return strings.TrimSpace(candidate[:lastBlank])
		}
		return strings.TrimSpace(candidate[:idx])
	}
	return strings.TrimSpace(candidate)
}

// scanLines captures the Subject-to-salutation span line by line, keeping one
// extra line after the salutation for the signature.
func scanLines(raw string) string {
	lines := strings.Split(raw, "\n")
	var captured []string
	inEmail := false

	for i, line := range lines {
		switch {
		case !inEmail && strings.Contains(line, "Subject:"):
			inEmail = true
			captured = append(captured, line)
		case inEmail && containsSalutation(line):
			captured = append(captured, line)
			if i+1 < len(lines) {
				captured = append(captured, lines[i+1])
			}
			return strings.Join(captured, "\n")
		case inEmail:
			captured = append(captured, line)
		}
	}

	if inEmail {
		return strings.Join(captured, "\n")
	}
	return ""
}

func containsSalutation(line string) bool {
	for _, s := range closingSalutations {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

// postProcess splits out the subject line and cleans agent markup from the
// accepted candidate. Running it over already-clean text is a no-op.
func (x *Extractor) postProcess(candidate string) (subject, body string) {
	body = candidate

	subject = findSubject(body, "Subject:")
	if subject == "" {
		subject = findSubject(body, "SUBJECT:")
	}
	if subject != "" {
		// Strip the exact matched subject line in both casings.
		body = strings.Replace(body, "Subject: "+subject, "", 1)
		body = strings.Replace(body, "SUBJECT: "+subject, "", 1)
		body = strings.TrimLeft(body, "\n")
	}

	body = callToActionRe.ReplaceAllString(body, "[Call to action: $1]")
	for token, replacement := range placeholderSubstitutions {
		body = strings.ReplaceAll(body, token, replacement)
	}

	return subject, body
}

func findSubject(text, marker string) string {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}
