// Package groq provides a client for the Groq OpenAI-compatible endpoint.
package groq

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"

	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/funcall-ai/funcall/pkg/llms/openai"
)

const (
	DefaultBaseURL   = "https://api.groq.com/openai/v1"
	DefaultChatModel = "llama-3.3-70b-versatile"

	tokenEnvVarName = "GROQ_API_KEY" //nolint:gosec
	modelEnvVarName = "GROQ_MODEL"   //nolint:gosec
)

// ErrMissingToken is returned when no API key is configured.
var ErrMissingToken = errors.New("missing the Groq API key, set it in the GROQ_API_KEY environment variable")

// LLM is a Groq client. Groq speaks the OpenAI chat completions protocol, so
// it wraps the OpenAI client with its own endpoint and credentials.
type LLM struct {
	*openai.LLM
}

var _ llms.Model = (*LLM)(nil)

type options struct {
	token      string
	model      string
	baseURL    string
	httpClient openai.Doer
}

// Option is a functional option for the Groq client.
type Option func(*options)

// WithToken passes the Groq API token to the client. If not set, the token
// is read from the GROQ_API_KEY environment variable.
func WithToken(token string) Option {
	return func(opts *options) {
		opts.token = token
	}
}

// WithModel passes the Groq model to the client. If not set, the model is
// read from the GROQ_MODEL environment variable.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithBaseURL overrides the default Groq endpoint.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(client openai.Doer) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// New returns a new Groq LLM.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		token:   os.Getenv(tokenEnvVarName),
		model:   values.StringsCoalesce(os.Getenv(modelEnvVarName), DefaultChatModel),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.token == "" {
		return nil, ErrMissingToken
	}

	openaiOpts := []openai.Option{
		openai.WithToken(o.token),
		openai.WithModel(o.model),
		openai.WithBaseURL(o.baseURL),
	}
	if o.httpClient != nil {
		openaiOpts = append(openaiOpts, openai.WithHTTPClient(o.httpClient))
	}
	inner, err := openai.New(openaiOpts...)
	if err != nil {
		return nil, err
	}
	return &LLM{LLM: inner}, nil
}

// GetProviderType implements the Model interface.
func (l *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderGroq
}
