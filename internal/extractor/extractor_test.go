package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockEmail = `Subject: Exclusive Deal: Fly from Manila to London This March!

Dear Valued Wanderly Traveler,

Book now at https://demobooking.demo.co and use promo code LONDON23!

Best regards,
The Wanderly Team`

func TestExtractNilResponseReturnsFallback(t *testing.T) {
	x := New(nil)

	email := x.Extract(nil, "generate a campaign", mockEmail)

	assert.True(t, email.Mock)
	assert.Equal(t, "Exclusive Deal: Fly from Manila to London This March!", email.Subject)
	assert.Equal(t, mockEmail, email.String())

	counter := ApproxTokenCounter{}
	assert.Equal(t, counter.Count("generate a campaign"), email.TokenCounts.Input)
	assert.Equal(t, counter.Count(mockEmail), email.TokenCounts.Output)
	assert.Equal(t, email.TokenCounts.Input+email.TokenCounts.Output, email.TokenCounts.Total)
}

func TestExtractByteChunks(t *testing.T) {
	x := New(nil)
	resp := &AgentResponse{Events: []Event{
		ByteChunk{Bytes: []byte("Hello ")},
		ByteChunk{Bytes: []byte("world")},
	}}

	email := x.Extract(resp, "prompt", mockEmail)

	assert.False(t, email.Mock)
	assert.Empty(t, email.Subject)
	assert.Equal(t, "Hello world", email.Body)
}

func TestExtractSkipsInvalidUTF8Chunk(t *testing.T) {
	x := New(nil)
	resp := &AgentResponse{Events: []Event{
		ByteChunk{Bytes: []byte("Hello ")},
		ByteChunk{Bytes: []byte{0xff, 0xfe}},
		ByteChunk{Bytes: []byte("world")},
	}}

	email := x.Extract(resp, "prompt", mockEmail)
	assert.Equal(t, "Hello world", email.Body)
}

func TestExtractStructuredMessageChunks(t *testing.T) {
	x := New(nil)
	resp := &AgentResponse{Events: []Event{
		StructuredMessageChunk{Texts: []string{"Subject: Spring Sale!\n", "\nFly away.\n"}},
	}}

	email := x.Extract(resp, "prompt", mockEmail)

	assert.Equal(t, "Spring Sale!", email.Subject)
	assert.NotContains(t, email.Body, "Subject: Spring Sale!")
	assert.Contains(t, email.Body, "Fly away.")
}

func TestExtractByteChunksTakePriorityOverStructured(t *testing.T) {
	x := New(nil)
	resp := &AgentResponse{Events: []Event{
		StructuredMessageChunk{Texts: []string{"structured text"}},
		ByteChunk{Bytes: []byte("byte text")},
	}}

	email := x.Extract(resp, "prompt", mockEmail)
	assert.Equal(t, "byte text", email.Body)
}

func TestRecoverSubjectFromRawBuffer(t *testing.T) {
	x := New(nil)
	raw := "{'trace': {...}} Subject: Big Sale!\nBody text here.\n\nBest regards,\nTeam"
	resp := &AgentResponse{Events: []Event{OpaqueEvent{Serialized: raw}}}

	email := x.Extract(resp, "prompt", mockEmail)

	assert.Equal(t, "Big Sale!", email.Subject)
	assert.NotContains(t, email.Body, "Subject: Big Sale!")
	assert.Contains(t, email.Body, "Body text here.")
	assert.Contains(t, email.Body, "Best regards,")
}

func TestRecoverTrimsTrailingNoiseAtBlankLine(t *testing.T) {
	x := New(nil)
	raw := "Subject: Deal\nFirst paragraph.\n\nSecond paragraph.\n\n<function_results>tool output</function_results>"
	resp := &AgentResponse{Events: []Event{OpaqueEvent{Serialized: raw}}}

	email := x.Extract(resp, "prompt", mockEmail)

	assert.Equal(t, "Deal", email.Subject)
	assert.Contains(t, email.Body, "Second paragraph.")
	assert.NotContains(t, email.Body, "function_results")
	assert.NotContains(t, email.Body, "tool output")
}

func TestRecoverLineScanStopsAfterSalutation(t *testing.T) {
	x := New(nil)
	// No "Subject: x" regex match (no space after colon) forces the line scan.
	raw := "preamble\nSubject:Flash Deal\nGreat fares inside.\nBest regards,\nThe Wanderly Team\ntrailing analysis text"
	resp := &AgentResponse{Events: []Event{OpaqueEvent{Serialized: raw}}}

	email := x.Extract(resp, "prompt", mockEmail)

	assert.Contains(t, email.Body, "Great fares inside.")
	assert.Contains(t, email.Body, "The Wanderly Team")
	assert.NotContains(t, email.Body, "trailing analysis text")
	assert.NotContains(t, email.Body, "preamble")
}

func TestExtractIdempotentOnCleanOutput(t *testing.T) {
	x := New(nil)
	first := x.Extract(&AgentResponse{Events: []Event{
		OpaqueEvent{Serialized: "Subject: Big Sale!\nBody text here.\n\nBest regards,\nTeam"},
	}}, "prompt", mockEmail)

	second := x.Extract(&AgentResponse{Events: []Event{
		ByteChunk{Bytes: []byte(first.Body)},
	}}, "prompt", mockEmail)

	assert.Empty(t, second.Subject)
	assert.Equal(t, first.Body, second.Body)
}

func TestTruncationLaw(t *testing.T) {
	x := New(nil)
	raw := strings.Repeat("x", MaxRawLength+500)
	resp := &AgentResponse{Events: []Event{OpaqueEvent{Serialized: raw}}}

	email := x.Extract(resp, "prompt", mockEmail)

	require.Len(t, email.Body, MaxRawLength+len(TruncationMarker))
	assert.True(t, strings.HasSuffix(email.Body, TruncationMarker))
	assert.True(t, strings.HasPrefix(raw, strings.TrimSuffix(email.Body, TruncationMarker)))
}

func TestShortUnstructuredRawReturnedVerbatim(t *testing.T) {
	x := New(nil)
	resp := &AgentResponse{Events: []Event{OpaqueEvent{Serialized: "just some words"}}}

	email := x.Extract(resp, "prompt", mockEmail)
	assert.Equal(t, "just some words", email.Body)
}

func TestEmptyStreamFallsBackToMock(t *testing.T) {
	x := New(nil)

	email := x.Extract(&AgentResponse{}, "prompt", mockEmail)
	assert.True(t, email.Mock)
	assert.Equal(t, mockEmail, email.String())
}

func TestUppercaseSubjectSpelling(t *testing.T) {
	x := New(nil)
	resp := &AgentResponse{Events: []Event{
		ByteChunk{Bytes: []byte("SUBJECT: Loud Deal\n\nBody here.")},
	}}

	email := x.Extract(resp, "prompt", mockEmail)
	assert.Equal(t, "Loud Deal", email.Subject)
	assert.Equal(t, "Body here.", email.Body)
}

func TestCallToActionTagRendered(t *testing.T) {
	x := New(nil)
	resp := &AgentResponse{Events: []Event{
		ByteChunk{Bytes: []byte("Fly soon.\n<call_to_action>Book today</call_to_action>\nBye.")},
	}}

	email := x.Extract(resp, "prompt", mockEmail)
	assert.Contains(t, email.Body, "[Call to action: Book today]")
	assert.NotContains(t, email.Body, "<call_to_action>")
}

func TestPlaceholderSubstitutions(t *testing.T) {
	x := New(nil)
	resp := &AgentResponse{Events: []Event{
		ByteChunk{Bytes: []byte("Dear [Customer], as a [Member/Gold] member: [Book Now]")},
	}}

	email := x.Extract(resp, "prompt", mockEmail)
	assert.Equal(t, "Dear Valued Wanderly Traveler, as a Gold member: Book Now at https://demobooking.demo.co", email.Body)
}

func TestApproxTokenCounter(t *testing.T) {
	counter := ApproxTokenCounter{}

	assert.Equal(t, 0, counter.Count(""))
	assert.Equal(t, 3, counter.Count("one two thr"))     // 11 chars -> ceil(11/4)=3, words=3
	assert.Equal(t, 5, counter.Count("a b c d e"))       // words dominate
	assert.Equal(t, 5, counter.Count("abcdefghijklmnopqrst")) // length dominates
}
