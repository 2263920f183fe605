package schema_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/funcall-ai/funcall/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parsed pulls the parameter object back out of a marshaled dialect.
func parsed(t *testing.T, tool any, path ...string) map[string]any {
	t.Helper()
	js, err := json.Marshal(tool)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(js, &m))
	for _, p := range path {
		m = m[p].(map[string]any)
	}
	return m
}

func names(params map[string]any) []string {
	var res []string
	for name := range params["properties"].(map[string]any) {
		res = append(res, name)
	}
	return res
}

func TestAdapters_RoundTrip(t *testing.T) {
	d, err := schema.Derive(Scale)
	require.NoError(t, err)

	openAI := parsed(t, schema.ToOpenAI(d), "function", "parameters")
	anthropic := parsed(t, schema.ToAnthropic(d), "input_schema")
	gemini := parsed(t, schema.ToGemini(d), "function", "parameters")
	groq := parsed(t, schema.ToGroq(d), "function", "parameters")

	for _, params := range []map[string]any{openAI, anthropic, gemini, groq} {
		assert.Equal(t, "object", params["type"])
		assert.ElementsMatch(t, []string{"value", "factor", "mode"}, names(params))
		assert.Equal(t, []any{"value"}, params["required"])

		props := params["properties"].(map[string]any)
		assert.Equal(t, "number", props["value"].(map[string]any)["type"])
		assert.Equal(t, "number", props["factor"].(map[string]any)["type"])
		assert.Equal(t, "string", props["mode"].(map[string]any)["type"])
	}
}

func TestAdapters_DialectShape(t *testing.T) {
	d, err := schema.Derive(Add, schema.WithDoc(addDoc))
	require.NoError(t, err)

	oa := parsed(t, schema.ToOpenAI(d))
	assert.Equal(t, "function", oa["type"])
	fn := oa["function"].(map[string]any)
	assert.Equal(t, "Add", fn["name"])
	assert.Equal(t, "Add two integers.", fn["description"])
	assert.Equal(t, false, fn["strict"])
	assert.Equal(t, false, fn["parameters"].(map[string]any)["additionalProperties"])

	an := parsed(t, schema.ToAnthropic(d))
	assert.Equal(t, "Add", an["name"])
	assert.Equal(t, "Add two integers.", an["description"])
	require.Contains(t, an, "input_schema")
	assert.NotContains(t, an, "parameters")

	gm := parsed(t, schema.ToGemini(d))
	gmFn := gm["function"].(map[string]any)
	assert.NotContains(t, gmFn, "strict")
	assert.NotContains(t, gmFn["parameters"].(map[string]any), "additionalProperties")

	// Groq uses the OpenAI dialect verbatim
	assert.Equal(t, oa, parsed(t, schema.ToGroq(d)))
}

func TestAdapters_PropertyOrder(t *testing.T) {
	d, err := schema.Derive(Search)
	require.NoError(t, err)

	js, err := json.Marshal(schema.ToOpenAI(d))
	require.NoError(t, err)

	// ordered properties marshal in declaration order
	order := []string{`"topic"`, `"filter"`, `"limit"`, `"verbose"`, `"tags"`}
	prev := -1
	s := string(js)
	for _, key := range order {
		idx := strings.Index(s, key)
		require.Greater(t, idx, prev, "expected %s after previous key", key)
		prev = idx
	}
}

func TestConverter_GenerateSchemas(t *testing.T) {
	c := schema.NewConverter()

	res, err := c.GenerateSchemas(Add, Square)
	require.NoError(t, err)
	require.Len(t, res, 4)

	for _, pt := range []llms.ProviderType{
		llms.ProviderOpenAI,
		llms.ProviderAnthropic,
		llms.ProviderGoogleAI,
		llms.ProviderGroq,
	} {
		require.Len(t, res[pt], 2, "provider %s", pt)
	}

	oa, ok := res[llms.ProviderOpenAI][0].(schema.OpenAITool)
	require.True(t, ok)
	assert.Equal(t, "Add", oa.Function.Name)

	an, ok := res[llms.ProviderAnthropic][1].(schema.AnthropicTool)
	require.True(t, ok)
	assert.Equal(t, "Square", an.Name)
}

func TestConverter_FailFast(t *testing.T) {
	c := schema.NewConverter()

	res, err := c.GenerateSchemas(Add, useBad, Square)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchemaDerivation)
	assert.Nil(t, res)
}
