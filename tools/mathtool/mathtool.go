// Package mathtool provides sample arithmetic tools for demos and tests.
package mathtool

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/funcall-ai/funcall/schema"
	"github.com/funcall-ai/funcall/tools"
)

// BinaryArgs is the input of the two-operand tools.
type BinaryArgs struct {
	A float64 `json:"a" jsonschema:"description=The first operand"`
	B float64 `json:"b" jsonschema:"description=The second operand"`
}

// UnaryArgs is the input of the single-operand tools.
type UnaryArgs struct {
	A float64 `json:"a" jsonschema:"description=The operand"`
}

func Add(_ context.Context, args BinaryArgs) (float64, error) {
	return args.A + args.B, nil
}

func Subtract(_ context.Context, args BinaryArgs) (float64, error) {
	return args.A - args.B, nil
}

func Multiply(_ context.Context, args BinaryArgs) (float64, error) {
	return args.A * args.B, nil
}

func Divide(_ context.Context, args BinaryArgs) (float64, error) {
	if args.B == 0 {
		return 0, errors.New("division by zero")
	}
	return args.A / args.B, nil
}

func Square(_ context.Context, args UnaryArgs) (float64, error) {
	return args.A * args.A, nil
}

func Cube(_ context.Context, args UnaryArgs) (float64, error) {
	return args.A * args.A * args.A, nil
}

// New wraps the arithmetic functions into tools.
func New() ([]tools.ITool, error) {
	specs := []struct {
		fn  any
		doc string
	}{
		{Add, "Adds two numbers and returns the result."},
		{Subtract, "Subtracts b from a and returns the result."},
		{Multiply, "Multiplies two numbers and returns the result."},
		{Divide, "Divides a by b and returns the result."},
		{Square, "Squares a number and returns the result."},
		{Cube, "Cubes a number and returns the result."},
	}

	res := make([]tools.ITool, 0, len(specs))
	for _, s := range specs {
		t, err := tools.NewFunc(s.fn, schema.WithDoc(s.doc))
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}
