package schema_test

import (
	"context"
	"testing"

	"github.com/funcall-ai/funcall/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type AddArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

func Add(_ context.Context, args AddArgs) (int, error) {
	return args.A + args.B, nil
}

type SquareArgs struct {
	X float64 `json:"x" jsonschema:"description=Value to square"`
}

func Square(args SquareArgs) (float64, error) {
	return args.X * args.X, nil
}

type ScaleArgs struct {
	Value  float64  `json:"value"`
	Factor *float64 `json:"factor,omitempty"`
	Mode   string   `json:"mode" jsonschema:"default=linear"`
}

func Scale(_ context.Context, args ScaleArgs) (float64, error) {
	f := 1.0
	if args.Factor != nil {
		f = *args.Factor
	}
	return args.Value * f, nil
}

type SearchFilter struct {
	Query string `json:"query"`
}

type SearchArgs struct {
	Topic   string       `json:"topic"`
	Filter  SearchFilter `json:"filter"`
	Limit   int          `json:"limit"`
	Verbose bool         `json:"verbose"`
	Tags    []string     `json:"tags"`
}

func Search(_ context.Context, args SearchArgs) (string, error) {
	return args.Topic, nil
}

func Lookup(_ context.Context, args map[string]any) (string, error) {
	return "", nil
}

const addDoc = `Add two integers.

Args:
    a: First addend.
    b: Second addend.`

func TestDerive(t *testing.T) {
	d, err := schema.Derive(Add, schema.WithDoc(addDoc))
	require.NoError(t, err)

	assert.Equal(t, "Add", d.Name)
	assert.Equal(t, "Add two integers.", d.Description)
	require.Len(t, d.Parameters, 2)

	a := d.Parameters[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, schema.TagInteger, a.Type)
	assert.True(t, a.Required)
	assert.Equal(t, "First addend.", a.Description)

	b := d.Parameters[1]
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, schema.TagInteger, b.Type)
	assert.True(t, b.Required)
	assert.Equal(t, "Second addend.", b.Description)

	assert.Equal(t, []string{"a", "b"}, d.Schema.Required)
}

func TestDerive_NoContext(t *testing.T) {
	d, err := schema.Derive(Square)
	require.NoError(t, err)

	assert.Equal(t, "Square", d.Name)
	assert.Empty(t, d.Description)
	require.Len(t, d.Parameters, 1)
	assert.Equal(t, "x", d.Parameters[0].Name)
	assert.Equal(t, schema.TagNumber, d.Parameters[0].Type)
	// struct tag description is used when no doc is given
	assert.Equal(t, "Value to square", d.Parameters[0].Description)
}

func TestDerive_Optional(t *testing.T) {
	d, err := schema.Derive(Scale)
	require.NoError(t, err)

	require.Len(t, d.Parameters, 3)
	assert.True(t, d.Parameters[0].Required)

	factor := d.Parameters[1]
	assert.Equal(t, schema.TagNumber, factor.Type)
	assert.False(t, factor.Required, "pointer parameter must be optional")

	mode := d.Parameters[2]
	assert.Equal(t, schema.TagString, mode.Type)
	assert.False(t, mode.Required, "parameter with a default must be optional")
	assert.Equal(t, "linear", mode.Default)

	assert.Equal(t, []string{"value"}, d.Schema.Required)
}

func TestDerive_Nested(t *testing.T) {
	d, err := schema.Derive(Search)
	require.NoError(t, err)

	names := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		names = append(names, p.Name)
	}
	// declaration order is preserved
	assert.Equal(t, []string{"topic", "filter", "limit", "verbose", "tags"}, names)

	assert.Equal(t, schema.TagString, d.Parameters[0].Type)
	assert.Equal(t, schema.TagObject, d.Parameters[1].Type)
	assert.Equal(t, schema.TagInteger, d.Parameters[2].Type)
	assert.Equal(t, schema.TagBoolean, d.Parameters[3].Type)
	assert.Equal(t, schema.TagArray, d.Parameters[4].Type)

	// nested refs are inlined
	filter := d.Parameters[1].Schema
	query, ok := filter.Properties.Get("query")
	require.True(t, ok)
	assert.Equal(t, schema.TagString, query.Type)
}

func TestDerive_MapFallback(t *testing.T) {
	doc := `Look up a value by key.

Args:
    key: The lookup key.`

	d, err := schema.Derive(Lookup, schema.WithDoc(doc))
	require.NoError(t, err)

	assert.Equal(t, "Lookup", d.Name)
	assert.Equal(t, "Look up a value by key.", d.Description)
	require.Len(t, d.Parameters, 1)
	assert.Equal(t, "key", d.Parameters[0].Name)
	assert.Equal(t, schema.TagString, d.Parameters[0].Type)
	assert.True(t, d.Parameters[0].Required)
	assert.Equal(t, "The lookup key.", d.Parameters[0].Description)
}

func TestDerive_Closure(t *testing.T) {
	fn := func(_ context.Context, args AddArgs) (int, error) {
		return args.A + args.B, nil
	}

	_, err := schema.Derive(fn)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchemaDerivation)

	d, err := schema.Derive(fn, schema.WithName("add"))
	require.NoError(t, err)
	assert.Equal(t, "add", d.Name)
}

type badArgs struct {
	Ch chan int `json:"ch"`
}

func useBad(_ context.Context, args badArgs) (int, error) {
	return 0, nil
}

func TestDerive_Unrepresentable(t *testing.T) {
	_, err := schema.Derive(useBad)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchemaDerivation)
}

func TestDerive_BadSignatures(t *testing.T) {
	tcases := []struct {
		name string
		fn   any
	}{
		{"not a function", 42},
		{"no arguments", func() (int, error) { return 0, nil }},
		{"scalar argument", func(int) (int, error) { return 0, nil }},
		{"no error return", func(AddArgs) int { return 0 }},
		{"wrong first argument", func(string, AddArgs) (int, error) { return 0, nil }},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.Derive(tc.fn, schema.WithName("bad"))
			assert.ErrorIs(t, err, schema.ErrSchemaDerivation)
		})
	}
}

func TestDerive_DocOverridesTag(t *testing.T) {
	doc := `Square a number.

Args:
    x: Input value.`

	d, err := schema.Derive(Square, schema.WithDoc(doc))
	require.NoError(t, err)
	assert.Equal(t, "Input value.", d.Parameters[0].Description)
}
