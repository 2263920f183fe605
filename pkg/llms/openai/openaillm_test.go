package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funcall-ai/funcall/pkg/llms"
)

type fakeDoer struct {
	req    *http.Request
	body   []byte
	status int
	resp   string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.req = req
	f.body, _ = io.ReadAll(req.Body)
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.resp)),
		Header:     http.Header{},
	}, nil
}

const chatResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "gpt-4o-mini",
	"choices": [
		{
			"index": 0,
			"message": {"role": "assistant", "content": "Hello there."},
			"finish_reason": "stop"
		}
	],
	"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
}`

const toolCallChatResponse = `{
	"id": "chatcmpl-2",
	"object": "chat.completion",
	"model": "gpt-4o-mini",
	"choices": [
		{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [
					{"id": "call_1", "type": "function", "function": {"name": "add", "arguments": "{\"a\":2,\"b\":3}"}}
				]
			},
			"finish_reason": "tool_calls"
		}
	],
	"usage": {"prompt_tokens": 20, "completion_tokens": 8, "total_tokens": 28}
}`

func Test_New_MissingToken(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := New()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func Test_GenerateContent(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, resp: chatResponse}
	llm, err := New(WithToken("test-key"), WithModel("gpt-4o-mini"), WithHTTPClient(doer))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", llm.GetName())
	assert.Equal(t, llms.ProviderOpenAI, llm.GetProviderType())

	resp, err := llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "You are helpful."),
		llms.MessageFromTextParts(llms.RoleHuman, "Say hello."),
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hello there.", resp.Choices[0].Content)
	assert.Equal(t, "stop", resp.Choices[0].StopReason)
	assert.Equal(t, int64(12), resp.Choices[0].GenerationInfo["InputTokens"])
	assert.Equal(t, int64(4), resp.Choices[0].GenerationInfo["OutputTokens"])

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", doer.req.URL.String())
	assert.Equal(t, "Bearer test-key", doer.req.Header.Get("Authorization"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(doer.body, &sent))
	assert.Equal(t, "gpt-4o-mini", sent["model"])
	msgs := sent["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "You are helpful.", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func Test_GenerateContent_Tools(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, resp: toolCallChatResponse}
	llm, err := New(WithToken("test-key"), WithModel("gpt-4o-mini"), WithHTTPClient(doer))
	require.NoError(t, err)

	resp, err := llm.GenerateContent(context.Background(),
		[]llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "What is 2+3?")},
		llms.WithTools([]llms.Tool{
			{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        "add",
					Description: "Adds two numbers.",
				},
			},
		}),
	)
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	require.Len(t, resp.Choices[0].ToolCalls, 1)

	call := resp.Choices[0].ToolCalls[0]
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "function", call.Type)
	assert.Equal(t, "add", call.FunctionCall.Name)
	assert.JSONEq(t, `{"a":2,"b":3}`, call.FunctionCall.Arguments)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(doer.body, &sent))
	sentTools := sent["tools"].([]any)
	require.Len(t, sentTools, 1)
	fn := sentTools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "add", fn["name"])
}

func Test_GenerateContent_ToolFlow(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, resp: chatResponse}
	llm, err := New(WithToken("test-key"), WithHTTPClient(doer))
	require.NoError(t, err)

	_, err = llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "What is 2+3?"),
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:           "call_1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: "add", Arguments: `{"a":2,"b":3}`},
		}),
		llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: "call_1",
			Name:       "add",
			Content:    "5",
		}),
	})
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(doer.body, &sent))
	msgs := sent["messages"].([]any)
	require.Len(t, msgs, 3)

	assistant := msgs[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	calls := assistant["tool_calls"].([]any)
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].(map[string]any)["id"])

	toolMsg := msgs[2].(map[string]any)
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "call_1", toolMsg["tool_call_id"])
	assert.Equal(t, "5", toolMsg["content"])
}

func Test_GenerateContent_Image(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, resp: chatResponse}
	llm, err := New(WithToken("test-key"), WithHTTPClient(doer))
	require.NoError(t, err)

	_, err = llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromParts(llms.RoleHuman,
			llms.BinaryPart("image/png", []byte{1, 2, 3}),
			llms.TextPart("what is this?"),
		),
	})
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(doer.body, &sent))
	msgs := sent["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)

	img := parts[0].(map[string]any)
	assert.Equal(t, "image_url", img["type"])
	url := img["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	text := parts[1].(map[string]any)
	assert.Equal(t, "text", text["type"])
	assert.Equal(t, "what is this?", text["text"])
}

func Test_GenerateContent_APIError(t *testing.T) {
	doer := &fakeDoer{
		status: http.StatusUnauthorized,
		resp:   `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`,
	}
	llm, err := New(WithToken("bad-key"), WithHTTPClient(doer))
	require.NoError(t, err)

	_, err = llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "Hi"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}
