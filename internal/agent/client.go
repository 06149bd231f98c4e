// Package agent invokes the Bedrock marketing agent and resolves its
// streaming reply into the closed event union consumed by the extractor.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/google/uuid"

	appconfig "github.com/wanderly/campaign-studio/internal/config"
	"github.com/wanderly/campaign-studio/internal/extractor"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// Client calls the Bedrock agent runtime. A zero AgentID disables live
// invocation; callers then work from mock content only.
type Client struct {
	runtime *bedrockagentruntime.Client
	cfg     appconfig.Agent
}

// New creates an agent client for the configured region. The client is still
// constructed when no agent id is set so the config guard stays in one place.
func New(ctx context.Context, cfg appconfig.Agent) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	c := &Client{
		runtime: bedrockagentruntime.NewFromConfig(awsCfg),
		cfg:     cfg,
	}
	logger.Info("agent client initialized",
		"region", cfg.Region,
		"configured", fmt.Sprintf("%t", cfg.Configured()))
	return c, nil
}

// Configured reports whether a live agent identity is available.
func (c *Client) Configured() bool { return c.cfg.Configured() }

// NewSessionID returns a fresh conversation session identifier.
func NewSessionID() string {
	return "demo-session-" + uuid.NewString()
}

// Invoke sends the instruction to the agent and drains the reply stream into
// an ordered AgentResponse. A nil response with a nil error means the agent
// is not configured. Stream errors after partial delivery return the events
// accumulated so far, so pattern recovery can still run on them.
func (c *Client) Invoke(ctx context.Context, sessionID, inputText string) (*extractor.AgentResponse, error) {
	if !c.cfg.Configured() {
		return nil, nil
	}

	out, err := c.runtime.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(c.cfg.AgentID),
		AgentAliasId: aws.String(c.cfg.AgentAliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(inputText),
		EnableTrace:  aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("invoking agent: %w", err)
	}

	stream := out.GetStream()
	defer stream.Close()

	resp := &extractor.AgentResponse{}
	for event := range stream.Events() {
		resp.Events = append(resp.Events, classify(event))
	}
	if err := stream.Err(); err != nil {
		logger.Warn("agent stream ended with error", "session_id", sessionID, "error", err)
		if len(resp.Events) > 0 {
			// Partial stream: the accumulated events are still usable.
			return resp, nil
		}
		return nil, fmt.Errorf("reading agent stream: %w", err)
	}

	logger.Info("agent reply drained", "session_id", sessionID, "events", len(resp.Events))
	return resp, nil
}

// structuredChunk is the legacy payload shape where the chunk bytes carry a
// JSON message with a content list instead of plain text.
type structuredChunk struct {
	Message struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// classify resolves one SDK stream member into the event union exactly once.
func classify(event types.ResponseStream) extractor.Event {
	switch v := event.(type) {
	case *types.ResponseStreamMemberChunk:
		if v.Value.Bytes == nil {
			return extractor.OpaqueEvent{Serialized: fmt.Sprintf("%+v", v.Value)}
		}
		// Older agent builds wrap the text in a message/content JSON
		// envelope inside the chunk bytes.
		var sc structuredChunk
		if err := json.Unmarshal(v.Value.Bytes, &sc); err == nil && len(sc.Message.Content) > 0 {
			texts := make([]string, 0, len(sc.Message.Content))
			for _, item := range sc.Message.Content {
				texts = append(texts, item.Text)
			}
			return extractor.StructuredMessageChunk{Texts: texts}
		}
		return extractor.ByteChunk{Bytes: v.Value.Bytes}
	default:
		return extractor.OpaqueEvent{Serialized: fmt.Sprintf("%+v", event)}
	}
}
