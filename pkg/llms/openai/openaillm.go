package openai

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"

	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/funcall-ai/funcall/pkg/llms/openai/internal/openaiclient"
)

const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
	RoleTool      = "tool"
)

// ErrMissingToken is returned when no API key is configured.
var ErrMissingToken = errors.New("missing the OpenAI API key, set it in the OPENAI_API_KEY environment variable")

// ErrEmptyResponse is returned when the API returns an empty response.
var ErrEmptyResponse = openaiclient.ErrEmptyResponse

// LLM is an OpenAI chat completions client.
type LLM struct {
	client *openaiclient.Client
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	c, err := newClient(opts...)
	if err != nil {
		return nil, err
	}
	return &LLM{
		client: c,
	}, nil
}

func newClient(opts ...Option) (*openaiclient.Client, error) {
	options := &options{
		token:        os.Getenv(tokenEnvVarName),
		model:        os.Getenv(modelEnvVarName),
		baseURL:      os.Getenv(baseURLEnvVarName),
		organization: os.Getenv(organizationEnvVarName),
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.token == "" {
		return nil, ErrMissingToken
	}
	return openaiclient.New(options.model, options.token, options.baseURL,
		options.organization, options.httpClient)
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return values.StringsCoalesce(o.client.Model, openaiclient.DefaultChatModel)
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOpenAI
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs := make([]*openaiclient.ChatMessage, 0, len(messages))
	for _, mc := range messages {
		msg, err := chatMessage(mc)
		if err != nil {
			return nil, err
		}
		chatMsgs = append(chatMsgs, msg)
	}

	req := &openaiclient.ChatRequest{
		Model:       opts.Model,
		Messages:    chatMsgs,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
		StopWords:   opts.StopWords,
		Seed:        opts.Seed,
		ToolChoice:  opts.ToolChoice,
	}
	for _, tool := range opts.Tools {
		t, err := toolFromTool(tool)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to convert tool definition")
		}
		req.Tools = append(req.Tools, t)
	}

	result, err := o.client.CreateChat(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: c.FinishReason,
			GenerationInfo: map[string]any{
				"InputTokens":  int64(result.Usage.PromptTokens),
				"OutputTokens": int64(result.Usage.CompletionTokens),
				"TotalTokens":  int64(result.Usage.TotalTokens),
			},
		}
		for _, tool := range c.Message.ToolCalls {
			choices[i].ToolCalls = append(choices[i].ToolCalls, llms.ToolCall{
				ID:   tool.ID,
				Type: tool.Type,
				FunctionCall: &llms.FunctionCall{
					Name:      tool.Function.Name,
					Arguments: tool.Function.Arguments,
				},
			})
		}
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

// chatMessage converts a canonical message to the wire shape. A single text
// part collapses to a plain string content.
func chatMessage(mc llms.Message) (*openaiclient.ChatMessage, error) {
	msg := &openaiclient.ChatMessage{}
	switch mc.Role {
	case llms.RoleSystem:
		msg.Role = RoleSystem
	case llms.RoleAI:
		msg.Role = RoleAssistant
	case llms.RoleHuman:
		msg.Role = RoleUser
	case llms.RoleTool:
		msg.Role = RoleTool
		if len(mc.Parts) != 1 {
			return nil, errors.Errorf("expected exactly one part for role %v, got %v", mc.Role, len(mc.Parts))
		}
		p, ok := mc.Parts[0].(llms.ToolCallResponse)
		if !ok {
			return nil, errors.Errorf("expected part of type ToolCallResponse for role %v, got %T", mc.Role, mc.Parts[0])
		}
		msg.ToolCallID = p.ToolCallID
		msg.Content = p.Content
		return msg, nil
	default:
		return nil, errors.Errorf("role %v not supported", mc.Role)
	}

	var parts []openaiclient.ChatMessagePart
	for _, part := range mc.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			parts = append(parts, openaiclient.ChatMessagePart{
				Type: "text",
				Text: p.Text,
			})
		case llms.ImageURLContent:
			parts = append(parts, openaiclient.ChatMessagePart{
				Type:     "image_url",
				ImageURL: &openaiclient.ChatMessageImageURL{URL: p.URL},
			})
		case llms.BinaryContent:
			parts = append(parts, openaiclient.ChatMessagePart{
				Type: "image_url",
				ImageURL: &openaiclient.ChatMessageImageURL{
					URL: "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data),
				},
			})
		case llms.ToolCall:
			msg.ToolCalls = append(msg.ToolCalls, openaiclient.ToolCall{
				ID:   p.ID,
				Type: p.Type,
				Function: openaiclient.ToolFunction{
					Name:      p.FunctionCall.Name,
					Arguments: p.FunctionCall.Arguments,
				},
			})
		default:
			return nil, errors.Errorf("content part %T not supported", part)
		}
	}
	if len(parts) == 1 && parts[0].Type == "text" {
		msg.Content = parts[0].Text
	} else if len(parts) > 0 {
		msg.Content = parts
	}
	return msg, nil
}

// toolFromTool converts an llms.Tool to the wire shape.
func toolFromTool(t llms.Tool) (openaiclient.Tool, error) {
	if t.Type != "function" {
		return openaiclient.Tool{}, errors.Errorf("tool type %v not supported", t.Type)
	}
	return openaiclient.Tool{
		Type: t.Type,
		Function: openaiclient.FunctionDefinition{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
			Strict:      t.Function.Strict,
		},
	}, nil
}
