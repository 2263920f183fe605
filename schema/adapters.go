package schema

import (
	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ProviderTool is one tool definition in a provider dialect.
type ProviderTool any

// OpenAITool is the OpenAI chat-completions tool dialect.
type OpenAITool struct {
	Type     string         `json:"type"`
	Function OpenAIFunction `json:"function"`
}

type OpenAIFunction struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Strict      bool              `json:"strict"`
	Parameters  *OpenAIParameters `json:"parameters"`
}

type OpenAIParameters struct {
	Type                 string                                             `json:"type"`
	Properties           *orderedmap.OrderedMap[string, *jsonschema.Schema] `json:"properties"`
	Required             []string                                           `json:"required"`
	AdditionalProperties bool                                               `json:"additionalProperties"`
}

// AnthropicTool is the Anthropic messages tool dialect.
type AnthropicTool struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	InputSchema *AnthropicInputSchema `json:"input_schema"`
}

type AnthropicInputSchema struct {
	Type       string                                             `json:"type"`
	Properties *orderedmap.OrderedMap[string, *jsonschema.Schema] `json:"properties"`
	Required   []string                                           `json:"required"`
}

// GeminiTool is the Gemini function-declaration dialect. Same nesting as
// OpenAI without the strict and additionalProperties markers.
type GeminiTool struct {
	Type     string         `json:"type"`
	Function GeminiFunction `json:"function"`
}

type GeminiFunction struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  *GeminiParameters `json:"parameters"`
}

type GeminiParameters struct {
	Type       string                                             `json:"type"`
	Properties *orderedmap.OrderedMap[string, *jsonschema.Schema] `json:"properties"`
	Required   []string                                           `json:"required"`
}

// ToOpenAI re-nests the descriptor into the OpenAI dialect.
func ToOpenAI(d *ToolDescriptor) OpenAITool {
	return OpenAITool{
		Type: "function",
		Function: OpenAIFunction{
			Name:        d.Name,
			Description: d.Description,
			Strict:      false,
			Parameters: &OpenAIParameters{
				Type:                 TagObject,
				Properties:           d.Schema.Properties,
				Required:             requiredList(d),
				AdditionalProperties: false,
			},
		},
	}
}

// ToAnthropic re-nests the descriptor into the Anthropic dialect.
func ToAnthropic(d *ToolDescriptor) AnthropicTool {
	return AnthropicTool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: &AnthropicInputSchema{
			Type:       TagObject,
			Properties: d.Schema.Properties,
			Required:   requiredList(d),
		},
	}
}

// ToGemini re-nests the descriptor into the Gemini dialect.
func ToGemini(d *ToolDescriptor) GeminiTool {
	return GeminiTool{
		Type: "function",
		Function: GeminiFunction{
			Name:        d.Name,
			Description: d.Description,
			Parameters: &GeminiParameters{
				Type:       TagObject,
				Properties: d.Schema.Properties,
				Required:   requiredList(d),
			},
		},
	}
}

// ToGroq re-nests the descriptor into the Groq dialect, which is identical
// to the OpenAI one.
func ToGroq(d *ToolDescriptor) OpenAITool {
	return ToOpenAI(d)
}

func requiredList(d *ToolDescriptor) []string {
	if d.Schema.Required == nil {
		return []string{}
	}
	return d.Schema.Required
}

// Converter derives tool schemas for all supported providers.
type Converter struct{}

func NewConverter() *Converter {
	return &Converter{}
}

// GenerateSchemas derives a descriptor once per function and fans it out to
// every provider dialect. The first derivation failure aborts the whole
// batch.
func (c *Converter) GenerateSchemas(fns ...any) (map[llms.ProviderType][]ProviderTool, error) {
	res := map[llms.ProviderType][]ProviderTool{}
	for _, fn := range fns {
		d, err := Derive(fn)
		if err != nil {
			return nil, err
		}
		res[llms.ProviderOpenAI] = append(res[llms.ProviderOpenAI], ToOpenAI(d))
		res[llms.ProviderAnthropic] = append(res[llms.ProviderAnthropic], ToAnthropic(d))
		res[llms.ProviderGoogleAI] = append(res[llms.ProviderGoogleAI], ToGemini(d))
		res[llms.ProviderGroq] = append(res[llms.ProviderGroq], ToGroq(d))
	}
	return res, nil
}
