package llm

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Provider is the interface all LLM providers must implement
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a completion request and returns the full response
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest represents a request to the LLM
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	Tools       []ToolSpec
}

// Message represents a chat message
type Message struct {
	Role    string
	Content string

	// Images are attached to user turns only.
	Images []Image

	// ToolCalls is set on assistant turns that asked for tools.
	ToolCalls []ToolCall

	// ToolCallID links a tool turn to the call it answers.
	ToolCallID string
}

// Image is a staged screenshot on local disk.
type Image struct {
	Path string
	Name string
	MIME string
}

// ToolSpec describes a function the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  any
}

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// CompletionResponse represents the full response
type CompletionResponse struct {
	Content      string
	Model        string
	FinishReason string
	ToolCalls    []ToolCall
	Usage        Usage
}

// Usage tracks token usage
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// NewRequest creates a simple completion request
func NewRequest(model string, systemPrompt, userPrompt string) *CompletionRequest {
	return &CompletionRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userPrompt},
		},
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}
