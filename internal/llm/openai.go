package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Options configures an OpenAI-compatible chat completions client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration

	// Vision reports whether the model accepts image parts. When false,
	// images are replaced by a text note.
	Vision bool
}

// OpenAIProvider talks to any endpoint speaking the OpenAI chat completions
// protocol. Groq and custom providers embed it.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	vision bool
}

func NewOpenAIProvider(opts Options) *OpenAIProvider {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
		vision: opts.Vision,
	}
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

func (o *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	msgs, err := toChatMessages(req.Messages, o.vision)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Tools:       toChatTools(req.Tools),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("chat completion failed (status %d): %w", apiErr.HTTPStatusCode, err)
		}
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	choice := resp.Choices[0]
	out := &CompletionResponse{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if out.Model == "" {
		out.Model = model
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func toChatMessages(msgs []Message, vision bool) ([]openai.ChatCompletionMessage, error) {
	result := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}

		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}

		if len(m.Images) > 0 {
			if !vision {
				cm.Content = withImageNote(m.Content, m.Images)
			} else {
				parts, err := imageParts(m.Content, m.Images)
				if err != nil {
					return nil, err
				}
				cm.Content = ""
				cm.MultiContent = parts
			}
		}

		result = append(result, cm)
	}
	return result, nil
}

func imageParts(text string, images []Image) ([]openai.ChatMessagePart, error) {
	var parts []openai.ChatMessagePart
	if strings.TrimSpace(text) != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: text,
		})
	}
	for _, img := range images {
		data, err := os.ReadFile(img.Path)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", img.Name, err)
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return parts, nil
}

func withImageNote(text string, images []Image) string {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name
	}
	note := fmt.Sprintf("[The user attached %d chat screenshot(s) that this model cannot view: %s]",
		len(images), strings.Join(names, ", "))
	if strings.TrimSpace(text) == "" {
		return note
	}
	return text + "\n\n" + note
}

func toChatTools(specs []ToolSpec) []openai.Tool {
	if len(specs) == 0 {
		return nil
	}
	tools := make([]openai.Tool, len(specs))
	for i, s := range specs {
		tools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.Parameters,
			},
		}
	}
	return tools
}
