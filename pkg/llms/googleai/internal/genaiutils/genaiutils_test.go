package genaiutils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/funcall-ai/funcall/schema"
)

func Test_ConvertJSONSchemaType(t *testing.T) {
	tests := []struct {
		in   string
		want genai.Type
	}{
		{"object", genai.TypeObject},
		{"string", genai.TypeString},
		{"number", genai.TypeNumber},
		{"integer", genai.TypeInteger},
		{"boolean", genai.TypeBoolean},
		{"array", genai.TypeArray},
		{"", genai.TypeUnspecified},
		{"null", genai.TypeUnspecified},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ConvertJSONSchemaType(tc.in), "type %q", tc.in)
	}
}

type searchArgs struct {
	Topic string   `json:"topic" jsonschema:"description=Topic to search for"`
	Limit int      `json:"limit,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

func search(_ context.Context, args searchArgs) (string, error) {
	return args.Topic, nil
}

func Test_ConvertTools(t *testing.T) {
	d, err := schema.Derive(search, schema.WithName("search"))
	require.NoError(t, err)

	tools := []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        d.Name,
				Description: "Searches for a topic.",
				Parameters:  d.Schema,
			},
		},
	}

	genaiTools, err := ConvertTools(tools)
	require.NoError(t, err)
	require.Len(t, genaiTools, 1)
	require.Len(t, genaiTools[0].FunctionDeclarations, 1)

	decl := genaiTools[0].FunctionDeclarations[0]
	assert.Equal(t, "search", decl.Name)
	assert.Equal(t, "Searches for a topic.", decl.Description)
	require.NotNil(t, decl.Parameters)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["topic"].Type)
	assert.Equal(t, "Topic to search for", decl.Parameters.Properties["topic"].Description)
	assert.Equal(t, genai.TypeInteger, decl.Parameters.Properties["limit"].Type)
	assert.Equal(t, genai.TypeArray, decl.Parameters.Properties["tags"].Type)
	require.NotNil(t, decl.Parameters.Properties["tags"].Items)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["tags"].Items.Type)
}

func Test_ConvertTools_BadType(t *testing.T) {
	_, err := ConvertTools([]llms.Tool{{Type: "web_search"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func Test_ConvertTools_Empty(t *testing.T) {
	genaiTools, err := ConvertTools(nil)
	require.NoError(t, err)
	assert.Nil(t, genaiTools)
}
