package domain

import "time"

// Role identifies the author of a message in the conversation log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Citation points at the retrieved source a policy answer was grounded on.
type Citation struct {
	SourceRef  string  `json:"source_ref"`
	PageNumber int     `json:"page_number,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// ToolCall represents a structured call the model asked the graph to perform.
// Compatible with the common OpenAI-style tool call shape.
type ToolCall struct {
	ID   string         `json:"id" mapstructure:"id"`
	Name string         `json:"name" mapstructure:"name"`
	Args map[string]any `json:"args,omitempty" mapstructure:"args"`
}

// Message is a single immutable record in the conversation log.
// Once appended it is never rewritten; corrections happen as new messages.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// Citations are attached to grounded policy answers.
	Citations []Citation `json:"citations,omitempty"`

	// ToolCalls is set on assistant messages that requested tool execution.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a RoleTool result message back to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}
