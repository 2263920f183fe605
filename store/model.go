package store

import (
	"github.com/funcall-ai/funcall/pkg/llms"
)

// Part type discriminators for the serialized form.
const (
	partText         = "text"
	partImageURL     = "image_url"
	partBinary       = "binary"
	partToolCall     = "tool_call"
	partToolResponse = "tool_response"
)

// MessageModel is the serializable form of llms.Message. The Parts of a
// message hold interface values and cannot be unmarshaled directly, so the
// stores persist this flat representation instead.
type MessageModel struct {
	Role  llms.Role   `json:"role"`
	Parts []PartModel `json:"parts"`
}

type PartModel struct {
	Type         string                 `json:"type"`
	Text         string                 `json:"text,omitempty"`
	URL          string                 `json:"url,omitempty"`
	MIMEType     string                 `json:"mime_type,omitempty"`
	Data         []byte                 `json:"data,omitempty"`
	ToolCall     *llms.ToolCall         `json:"tool_call,omitempty"`
	ToolResponse *llms.ToolCallResponse `json:"tool_response,omitempty"`
}

// EncodeMessage converts a message into its serializable form.
func EncodeMessage(msg llms.Message) MessageModel {
	m := MessageModel{
		Role:  msg.Role,
		Parts: make([]PartModel, 0, len(msg.Parts)),
	}
	for _, p := range msg.Parts {
		switch t := p.(type) {
		case llms.TextContent:
			m.Parts = append(m.Parts, PartModel{Type: partText, Text: t.Text})
		case llms.ImageURLContent:
			m.Parts = append(m.Parts, PartModel{Type: partImageURL, URL: t.URL})
		case llms.BinaryContent:
			m.Parts = append(m.Parts, PartModel{Type: partBinary, MIMEType: t.MIMEType, Data: t.Data})
		case llms.ToolCall:
			tc := t
			m.Parts = append(m.Parts, PartModel{Type: partToolCall, ToolCall: &tc})
		case llms.ToolCallResponse:
			tr := t
			m.Parts = append(m.Parts, PartModel{Type: partToolResponse, ToolResponse: &tr})
		}
	}
	return m
}

// Decode converts the serialized form back into a message. Parts of an
// unknown type are dropped.
func (m MessageModel) Decode() llms.Message {
	msg := llms.Message{
		Role:  m.Role,
		Parts: make([]llms.ContentPart, 0, len(m.Parts)),
	}
	for _, p := range m.Parts {
		switch p.Type {
		case partText:
			msg.Parts = append(msg.Parts, llms.TextContent{Text: p.Text})
		case partImageURL:
			msg.Parts = append(msg.Parts, llms.ImageURLContent{URL: p.URL})
		case partBinary:
			msg.Parts = append(msg.Parts, llms.BinaryContent{MIMEType: p.MIMEType, Data: p.Data})
		case partToolCall:
			if p.ToolCall != nil {
				msg.Parts = append(msg.Parts, *p.ToolCall)
			}
		case partToolResponse:
			if p.ToolResponse != nil {
				msg.Parts = append(msg.Parts, *p.ToolResponse)
			}
		}
	}
	return msg
}

// DecodeMessages converts a batch of serialized messages.
func DecodeMessages(models []MessageModel) []llms.Message {
	if models == nil {
		return nil
	}
	res := make([]llms.Message, 0, len(models))
	for _, m := range models {
		res = append(res, m.Decode())
	}
	return res
}
