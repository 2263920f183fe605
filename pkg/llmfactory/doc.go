// Package llmfactory creates LLM models from a provider configuration file.
package llmfactory
