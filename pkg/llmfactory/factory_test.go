package llmfactory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funcall-ai/funcall/pkg/llmfactory"
	"github.com/funcall-ai/funcall/pkg/llms"
)

type fakeLLM struct {
	provider string
	model    string
}

func (f *fakeLLM) GetName() string                    { return f.model }
func (f *fakeLLM) GetProviderType() llms.ProviderType { return llms.ProviderType(f.provider) }
func (f *fakeLLM) GenerateContent(_ context.Context, _ []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func Test_Factory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("GROQ_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("GEMINI_API_KEY", "fakekey")

	cfg, err := llmfactory.LoadConfig("testdata/llm.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Providers)

	llmfactory.NewLLM = func(cfg *llmfactory.ProviderConfig, preferredModels ...string) (llms.Model, error) {
		return &fakeLLM{provider: cfg.Provider, model: cfg.FindModel(preferredModels...)}, nil
	}
	defer func() {
		llmfactory.NewLLM = llmfactory.CreateLLM
	}()

	f := llmfactory.New(cfg)
	model, err := f.DefaultModel()
	require.NoError(t, err)
	require.NotNil(t, model)
	fm := model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	model, err = f.ModelByName("gpt-4o-mini")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	// the first available preferred model wins
	model, err = f.ModelByName("unknown-model", "claude-3-5-haiku-latest")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-3-5-haiku-latest", fm.model)
	assert.Equal(t, "ANTHROPIC", fm.provider)

	// non-existent models fall back to the default provider
	model, err = f.ModelByName("non-existent-model")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	model, err = f.ModelByProvider("GROQ")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "llama-3.3-70b-versatile", fm.model)
	assert.Equal(t, "GROQ", fm.provider)

	// cached on second lookup
	model2, err := f.ModelByProvider("GROQ")
	require.NoError(t, err)
	assert.Same(t, model, model2)

	_, err = f.ModelByProvider("BEDROCK")
	assert.EqualError(t, err, "provider not found for type: BEDROCK")

	// tool specific mapping
	model, err = f.ToolModel("calculator")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-3-5-haiku-latest", fm.model)

	// unmapped tools use the default mapping
	model, err = f.ToolModel("websearch")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)
}

func Test_Factory_NoProviders(t *testing.T) {
	f := llmfactory.New(&llmfactory.Config{})
	_, err := f.DefaultModel()
	assert.EqualError(t, err, "no providers configured")

	_, err = f.ModelByName("gpt-4o")
	assert.EqualError(t, err, "no providers configured")
}

func Test_LoadConfig(t *testing.T) {
	cfg, err := llmfactory.LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Providers)

	_, err = llmfactory.LoadConfig("testdata/missing.yaml")
	assert.Error(t, err)
}

func Test_CreateLLM_Unsupported(t *testing.T) {
	_, err := llmfactory.CreateLLM(&llmfactory.ProviderConfig{
		Name:     "bedrock",
		Provider: "BEDROCK",
	})
	assert.EqualError(t, err, "unsupported provider type: BEDROCK")
}

func Test_CreateLLM_Providers(t *testing.T) {
	tcases := []struct {
		name     string
		cfg      *llmfactory.ProviderConfig
		provider llms.ProviderType
	}{
		{
			name: "openai",
			cfg: &llmfactory.ProviderConfig{
				Name:         "openai",
				Provider:     "OPENAI",
				Token:        "sk-test",
				DefaultModel: "gpt-4o",
			},
			provider: llms.ProviderOpenAI,
		},
		{
			name: "groq",
			cfg: &llmfactory.ProviderConfig{
				Name:         "groq",
				Provider:     "GROQ",
				Token:        "gsk-test",
				DefaultModel: "llama-3.3-70b-versatile",
			},
			provider: llms.ProviderGroq,
		},
		{
			name: "anthropic",
			cfg: &llmfactory.ProviderConfig{
				Name:         "anthropic",
				Provider:     "ANTHROPIC",
				Token:        "sk-ant-test",
				DefaultModel: "claude-sonnet-4-20250514",
			},
			provider: llms.ProviderAnthropic,
		},
		{
			name: "googleai",
			cfg: &llmfactory.ProviderConfig{
				Name:         "gemini",
				Provider:     "GOOGLEAI",
				Token:        "AIza-test",
				DefaultModel: "gemini-2.5-flash",
			},
			provider: llms.ProviderGoogleAI,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			model, err := llmfactory.CreateLLM(tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.provider, model.GetProviderType())
			assert.Equal(t, tc.cfg.DefaultModel, model.GetName())
		})
	}
}
