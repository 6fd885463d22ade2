// Package envelope builds the JSON event envelope handed to the publish
// sink. Envelopes are immutable after construction; ownership passes to the
// publisher.
package envelope

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// timestampLayout is ISO-8601 with millisecond precision and a UTC offset.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Context captures the environment the event originated from. All fields are
// best-effort; capture failures leave them empty.
type Context struct {
	Platform         string `json:"platform"`
	WorkingDirectory string `json:"workingDirectory"`
	VCSBranch        string `json:"vcsBranch,omitempty"`
	VCSStatus        string `json:"vcsStatus,omitempty"`
}

// Envelope is the wire format published for every hook event.
type Envelope struct {
	ID         string          `json:"id"`
	EventKind  string          `json:"eventKind"`
	Timestamp  string          `json:"timestamp"`
	SessionKey string          `json:"sessionKey"`
	Sequence   int64           `json:"sequence"`
	Payload    json.RawMessage `json:"payload"`
	Context    Context         `json:"context"`
	ToolName   string          `json:"toolName,omitempty"`
	MCPServer  string          `json:"mcpServer,omitempty"`
	MCPTool    string          `json:"mcpTool,omitempty"`
}

// Params carries everything needed to build an envelope.
type Params struct {
	EventKind  string
	SessionKey string
	Sequence   int64
	Payload    json.RawMessage
	Context    Context
	ToolName   string
	MCPServer  string
	MCPTool    string
	Now        time.Time
}

// New constructs an envelope. A zero Now means the current UTC time; a nil
// payload becomes an empty JSON object so consumers never see null.
func New(p Params) Envelope {
	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	payload := p.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	return Envelope{
		ID:         uuid.NewString(),
		EventKind:  p.EventKind,
		Timestamp:  now.UTC().Format(timestampLayout),
		SessionKey: p.SessionKey,
		Sequence:   p.Sequence,
		Payload:    payload,
		Context:    p.Context,
		ToolName:   p.ToolName,
		MCPServer:  p.MCPServer,
		MCPTool:    p.MCPTool,
	}
}

// Encode serializes the envelope for publishing.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a serialized envelope, used by consumers and tests.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}
