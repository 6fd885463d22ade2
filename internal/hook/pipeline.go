package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/krsfer/claude-hooks-sub000/internal/classify"
	"github.com/krsfer/claude-hooks-sub000/internal/envelope"
	"github.com/krsfer/claude-hooks-sub000/internal/logutil"
	"github.com/krsfer/claude-hooks-sub000/internal/metrics"
	"github.com/krsfer/claude-hooks-sub000/internal/seq"
)

// Recorder receives a published envelope for a best-effort secondary write.
// Recorder failures are the recorder's own problem: they are logged there
// and never reach the pipeline.
type Recorder interface {
	Record(ctx context.Context, env envelope.Envelope, encoded []byte)
}

// Pipeline wires one hook invocation from raw input to published envelope.
type Pipeline struct {
	Allocator *seq.Allocator
	Publisher Publisher
	Channel   string
	Timeout   time.Duration
	Recorders []Recorder

	// CaptureContext overrides environment capture, used by tests.
	CaptureContext func(ctx context.Context) envelope.Context
}

// Process validates the invocation, enriches the payload, and publishes the
// resulting envelope. The envelope is returned for logging even when the
// publish fails; it is nil only for validation and payload-read errors.
func (p *Pipeline) Process(ctx context.Context, kindArg, sessionKey string, input io.Reader) (*envelope.Envelope, error) {
	kind, err := ParseKind(kindArg)
	if err != nil {
		return nil, err
	}
	if sessionKey == "" {
		return nil, fmt.Errorf("%w: session key is required", ErrValidation)
	}

	payload, fields := readPayload(input)
	if payload == nil {
		return nil, fmt.Errorf("%w: cannot read payload from input", ErrPayloadRead)
	}

	allocStart := time.Now()
	sequence, err := p.Allocator.Allocate(sessionKey)
	if err != nil {
		// Only an empty session key errors, and that was checked above.
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	metrics.ObserveAllocation(time.Since(allocStart))

	var toolName, mcpServer, mcpTool string
	if kind.ToolEvent() {
		res := classify.Classify(classify.Input{
			Kind:         classifyKind(kind),
			DeclaredName: declaredName(fields),
			Fields:       fields,
		})
		toolName = res.Label
		if res.SubLabel != "" {
			toolName = res.Label + "(" + res.SubLabel + ")"
		}
		mcpServer = res.MCPServer
		mcpTool = res.MCPTool
	}

	capture := p.CaptureContext
	if capture == nil {
		capture = envelope.CaptureContext
	}

	env := envelope.New(envelope.Params{
		EventKind:  string(kind),
		SessionKey: sessionKey,
		Sequence:   sequence,
		Payload:    payload,
		Context:    capture(ctx),
		ToolName:   toolName,
		MCPServer:  mcpServer,
		MCPTool:    mcpTool,
	})

	encoded, err := env.Encode()
	if err != nil {
		// Envelope fields are all marshalable types; this cannot happen.
		return &env, fmt.Errorf("%w: encode envelope: %v", ErrPublish, err)
	}

	pubCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := p.Publisher.Publish(pubCtx, p.Channel, string(encoded)); err != nil {
		metrics.ObservePublish(string(kind), "failed")
		return &env, fmt.Errorf("%w: %v", ErrPublish, err)
	}
	metrics.ObservePublish(string(kind), "published")

	for _, rec := range p.Recorders {
		rec.Record(ctx, env, encoded)
	}

	logutil.Debug("event published", map[string]interface{}{
		"id":       env.ID,
		"kind":     env.EventKind,
		"session":  env.SessionKey,
		"sequence": env.Sequence,
		"tool":     env.ToolName,
	})
	return &env, nil
}

// readPayload slurps the input and parses it as JSON. A hard read failure
// returns nil; unparseable content degrades to an empty object so telemetry
// never blocks the caller's workflow over a malformed payload. Valid
// non-object payloads are carried verbatim but classify with no fields.
func readPayload(input io.Reader) (json.RawMessage, map[string]interface{}) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		logutil.Debug("payload is not valid JSON, substituting empty object", map[string]interface{}{
			"bytes": len(data),
		})
		return json.RawMessage("{}"), map[string]interface{}{}
	}
	fields := map[string]interface{}{}
	_ = json.Unmarshal(data, &fields)
	return json.RawMessage(data), fields
}

// declaredName pulls the declared tool name out of the payload, looking at
// the spellings seen in the wild.
func declaredName(fields map[string]interface{}) string {
	for _, key := range []string{"tool_name", "toolName"} {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func classifyKind(k Kind) classify.EventKind {
	switch k {
	case KindPreToolUse:
		return classify.KindPreToolUse
	case KindPostToolUse:
		return classify.KindPostToolUse
	default:
		return classify.KindOther
	}
}
