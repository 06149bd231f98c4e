package extractor

import (
	"fmt"
	"strings"
)

// Event is one unit of a streamed agent reply. The upstream payload shape has
// drifted across agent deployments, so each event is resolved into exactly one
// of three shapes at ingestion time and dispatched by type, never by repeated
// field probing.
type Event interface {
	// Raw returns the event's serialized form for pattern-based recovery.
	Raw() string

	isEvent()
}

// ByteChunk carries a raw byte payload, decoded as UTF-8 text.
// This is what the deployed agent runtime emits today.
type ByteChunk struct {
	Bytes []byte
}

func (e ByteChunk) Raw() string { return string(e.Bytes) }
func (ByteChunk) isEvent()      {}

// StructuredMessageChunk carries a nested message with a content list, each
// item holding a text field. Seen from older agent builds.
type StructuredMessageChunk struct {
	Texts []string
}

func (e StructuredMessageChunk) Raw() string { return strings.Join(e.Texts, "") }
func (StructuredMessageChunk) isEvent()      {}

// OpaqueEvent is anything the ingestion layer could not classify: trace
// frames, tool telemetry, unknown members. Its serialized form still feeds
// the pattern-recovery buffer.
type OpaqueEvent struct {
	Serialized string
}

func (e OpaqueEvent) Raw() string { return e.Serialized }
func (OpaqueEvent) isEvent()      {}

// AgentResponse is the ordered, finite event sequence of one agent
// invocation. A nil response or empty event list is a valid input and routes
// straight to the mock fallback.
type AgentResponse struct {
	Events []Event
}

// Usage carries the advisory token counts of an extraction.
type Usage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// ExtractedEmail is the normalized result of one generation request. It is
// produced fresh per request and superseded wholesale by the next one.
type ExtractedEmail struct {
	Subject     string `json:"subject,omitempty"`
	Body        string `json:"body"`
	TokenCounts Usage  `json:"tokenCounts"`
	Mock        bool   `json:"mock"`
}

// String renders the email in the Subject/Body wire form.
func (e ExtractedEmail) String() string {
	if e.Subject == "" {
		return e.Body
	}
	return fmt.Sprintf("Subject: %s\n\n%s", e.Subject, e.Body)
}
