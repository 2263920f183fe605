// Package orchestrator runs the multi-turn tool-calling loop between a
// provider model and a set of registered tools.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"

	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/funcall-ai/funcall/pkg/llmutils"
	"github.com/funcall-ai/funcall/pkg/metricskey"
	"github.com/funcall-ai/funcall/tools"
)

var logger = xlog.NewPackageLogger("github.com/funcall-ai/funcall", "orchestrator")

// ErrDispatchLimit is returned when the model keeps requesting tools past the
// configured round limit.
var ErrDispatchLimit = errors.New("tool dispatch limit exceeded")

// Orchestrator owns one append-only conversation with a model and dispatches
// the tool calls the model requests. It is not safe for concurrent use; run
// one turn at a time.
type Orchestrator struct {
	llm      llms.Model
	cfg      config
	registry *tools.Registry
	toolDefs []llms.Tool
	messages []llms.Message
}

// New creates an Orchestrator for the given model.
func New(model llms.Model, opts ...Option) *Orchestrator {
	cfg := config{
		maxToolRounds: DefaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Orchestrator{
		llm:      model,
		cfg:      cfg,
		registry: tools.NewRegistry(),
	}
}

// RegisterFunction derives a tool from a plain Go function and registers it.
// Re-registering the same name overwrites the previous tool.
func (o *Orchestrator) RegisterFunction(fn any, opts ...tools.FuncOption) error {
	tool, err := tools.NewFunc(fn, opts...)
	if err != nil {
		return err
	}
	o.RegisterTools(tool)
	return nil
}

// RegisterFunctions registers several functions, failing on the first one
// whose schema cannot be derived.
func (o *Orchestrator) RegisterFunctions(fns ...any) error {
	for _, fn := range fns {
		if err := o.RegisterFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterTools registers already-constructed tools and refreshes the tool
// definitions sent with every generate call.
func (o *Orchestrator) RegisterTools(list ...tools.ITool) {
	o.registry.Register(list...)
	o.toolDefs = o.registry.Defs()
}

// SetTools replaces the tool definitions sent with every generate call.
// RegisterFunction and RegisterTools populate these automatically.
func (o *Orchestrator) SetTools(defs []llms.Tool) {
	o.toolDefs = defs
}

// SetSystemPrompt inserts or replaces the single leading system message.
func (o *Orchestrator) SetSystemPrompt(text string) {
	msg := llms.MessageFromTextParts(llms.RoleSystem, text)
	if len(o.messages) > 0 && o.messages[0].Role == llms.RoleSystem {
		o.messages[0] = msg
		return
	}
	o.messages = append([]llms.Message{msg}, o.messages...)
}

// Messages returns a copy of the conversation so far.
func (o *Orchestrator) Messages() []llms.Message {
	out := make([]llms.Message, len(o.messages))
	copy(out, o.messages)
	return out
}

// Reset clears the conversation, including any system prompt.
func (o *Orchestrator) Reset() {
	o.messages = nil
}

// SendUserMessage appends a user text message and runs the tool-calling loop
// until the model produces a text-only reply, which is returned.
func (o *Orchestrator) SendUserMessage(ctx context.Context, text string) (string, error) {
	return o.run(ctx, llms.MessageFromTextParts(llms.RoleHuman, text))
}

// SendUserImage appends a user message carrying image bytes with the given
// MIME type, plus an optional text comment, and runs the loop.
func (o *Orchestrator) SendUserImage(ctx context.Context, mime string, data []byte, comment string) (string, error) {
	parts := []llms.ContentPart{llms.BinaryPart(mime, data)}
	if comment != "" {
		parts = append(parts, llms.TextPart(comment))
	}
	return o.run(ctx, llms.MessageFromParts(llms.RoleHuman, parts...))
}

func (o *Orchestrator) run(ctx context.Context, msg llms.Message) (string, error) {
	started := time.Now()
	modelName := o.llm.GetName()
	provider := string(o.llm.GetProviderType())

	o.messages = append(o.messages, msg)
	runMessages := []llms.Message{msg}

	callOpts := make([]llms.CallOption, len(o.cfg.callOptions))
	copy(callOpts, o.cfg.callOptions)
	if len(o.toolDefs) > 0 {
		callOpts = append(callOpts, llms.WithTools(o.toolDefs))
	}

	rounds := 0
	for {
		bytesSent := llmutils.CountMessagesContentSize(o.messages)
		metricskey.StatsLLMMessagesSent.IncrCounter(float64(len(o.messages)), provider, modelName)
		metricskey.StatsLLMBytesSent.IncrCounter(float64(bytesSent), provider, modelName)

		resp, err := o.llm.GenerateContent(ctx, o.messages, callOpts...)
		if err != nil {
			metricskey.StatsChatRunsFailed.IncrCounter(1, provider, modelName)
			return "", errors.WithStack(err)
		}

		bytesReceived := llmutils.CountResponseContentSize(resp)
		metricskey.StatsLLMBytesReceived.IncrCounter(float64(bytesReceived), provider, modelName)
		metricskey.StatsLLMBytesTotal.IncrCounter(float64(bytesSent+bytesReceived), provider, modelName)

		tokensIn, tokensOut, tokensTotal := llmutils.CountTokens(resp)
		metricskey.StatsLLMInputTokens.IncrCounter(float64(tokensIn), provider, modelName)
		metricskey.StatsLLMOutputTokens.IncrCounter(float64(tokensOut), provider, modelName)
		metricskey.StatsLLMTotalTokens.IncrCounter(float64(tokensTotal), provider, modelName)

		if len(resp.Choices) == 0 {
			metricskey.StatsChatRunsFailed.IncrCounter(1, provider, modelName)
			return "", errors.Newf("model %s returned no choices", modelName)
		}

		choice := resp.Choices[0]
		toolCalls := normalizeToolCalls(choice.ToolCalls)
		if len(toolCalls) == 0 {
			result := choice.Content
			reply := llms.MessageFromTextParts(llms.RoleAI, result)
			o.messages = append(o.messages, reply)
			runMessages = append(runMessages, reply)

			o.persist(ctx, runMessages)

			metricskey.StatsChatRunsSucceeded.IncrCounter(1, provider, modelName)
			metricskey.PerfChatRun.MeasureSince(started, provider, modelName)

			logger.ContextKV(ctx, xlog.DEBUG,
				"model", modelName,
				"status", "turn_complete",
				"tool_rounds", rounds,
				"result_length", len(result),
			)
			return result, nil
		}

		rounds++
		if rounds > o.cfg.maxToolRounds {
			metricskey.StatsChatRunsFailed.IncrCounter(1, provider, modelName)
			logger.ContextKV(ctx, xlog.WARNING,
				"model", modelName,
				"status", "dispatch_limit_exceeded",
				"tool_rounds", rounds,
				"limit", o.cfg.maxToolRounds,
			)
			return "", errors.WithStack(ErrDispatchLimit)
		}

		assistantMsg := llms.MessageFromToolCalls(llms.RoleAI, toolCalls...)
		o.messages = append(o.messages, assistantMsg)
		runMessages = append(runMessages, assistantMsg)

		for _, toolCall := range toolCalls {
			response := o.executeToolCall(ctx, toolCall)
			o.messages = append(o.messages, response)
			runMessages = append(runMessages, response)
		}
	}
}

// normalizeToolCalls fills in IDs the provider omitted, using the call's
// position in the response, and defaults the call type to "function".
func normalizeToolCalls(toolCalls []llms.ToolCall) []llms.ToolCall {
	out := make([]llms.ToolCall, 0, len(toolCalls))
	for i, toolCall := range toolCalls {
		if toolCall.ID == "" {
			toolCall.ID = fmt.Sprintf("%s_%d", toolCall.FunctionCall.Name, i)
		}
		toolCall.Type = values.StringsCoalesce(toolCall.Type, "function")
		out = append(out, toolCall)
	}
	return out
}

func (o *Orchestrator) executeToolCall(ctx context.Context, toolCall llms.ToolCall) llms.Message {
	toolName := toolCall.FunctionCall.Name
	toolArgs := toolCall.FunctionCall.Arguments

	tool, ok := o.registry.Get(toolName)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, toolName)
		availableTools := strings.Join(o.registry.Names(), ", ")
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"tool_name", toolName,
			"available_tools", availableTools,
		)
		return llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: toolCall.ID,
			Name:       toolName,
			Content:    fmt.Sprintf("Tool `%s` not found. Please check the tool name and try again with exact match. Available tools: %s", toolName, availableTools),
			IsError:    true,
		})
	}

	if o.cfg.callback != nil {
		o.cfg.callback.OnToolStart(ctx, tool, toolArgs)
	}

	started := time.Now()
	res, err := tool.Call(ctx, toolArgs)
	metricskey.PerfToolCall.MeasureSince(started, toolName)

	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, toolName)
		if o.cfg.callback != nil {
			o.cfg.callback.OnToolError(ctx, tool, toolArgs, err)
		}
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool_name", toolName,
			"err", err.Error(),
		)
		return llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: toolCall.ID,
			Name:       toolName,
			Content:    fmt.Sprintf("Tool call failed: %s", err.Error()),
			IsError:    true,
		})
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, toolName)
	if o.cfg.callback != nil {
		o.cfg.callback.OnToolEnd(ctx, tool, toolArgs, res)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "tool_call_response",
		"tool_call_id", toolCall.ID,
		"tool_name", toolName,
		"response", slices.StringUpto(res, 64),
	)
	return llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
		ToolCallID: toolCall.ID,
		Name:       toolName,
		Content:    res,
	})
}

func (o *Orchestrator) persist(ctx context.Context, runMessages []llms.Message) {
	if o.cfg.store == nil || len(runMessages) == 0 {
		return
	}
	if err := o.cfg.store.Add(ctx, runMessages...); err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "failed_to_store_messages",
			"err", err.Error(),
		)
	}
}
