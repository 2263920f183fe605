// Package chatmodel provides the chat context carried through a
// conversation and shared helpers for tool and model input handling.
package chatmodel

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

var (
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
	ErrInvalidChatContext   = errors.New("invalid chat context")
)

// ContentProvider exposes the content of a value for the chat history.
type ContentProvider interface {
	GetContent() string
}

// InputParser is implemented by tool inputs that parse raw model output
// themselves instead of plain JSON unmarshaling.
type InputParser interface {
	// ParseInput parses the input of a tool call.
	// If parsing fails, it should return ErrFailedUnmarshalInput.
	ParseInput(input string) error
}

type Stringer interface {
	String() string
}

func Stringify(s any) string {
	if v, ok := s.(Stringer); ok {
		return v.String()
	}
	if v, ok := s.(ContentProvider); ok {
		return v.GetContent()
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

func ToBytes(s any) []byte {
	if v, ok := s.(Stringer); ok {
		return []byte(v.String())
	}
	if v, ok := s.(ContentProvider); ok {
		return []byte(v.GetContent())
	}
	bs, _ := json.Marshal(s)
	return bs
}
