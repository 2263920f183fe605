// Package tools defines the Tool interface for LLM tool calling, including
// registration, parameter schema derivation, and argument validation. Tools
// let the model invoke ordinary Go functions with structured arguments.
package tools
