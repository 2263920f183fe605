package tools_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/funcall-ai/funcall/chatmodel"
	"github.com/funcall-ai/funcall/mocks/mocktools"
	"github.com/funcall-ai/funcall/schema"
	"github.com/funcall-ai/funcall/tools"
)

type AddArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

func Add(_ context.Context, args AddArgs) (int, error) {
	return args.A + args.B, nil
}

type DivideArgs struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

func Divide(args DivideArgs) (float64, error) {
	if args.B == 0 {
		return 0, fmt.Errorf("division by zero")
	}
	return args.A / args.B, nil
}

func Greet(_ context.Context, args map[string]any) (string, error) {
	return fmt.Sprintf("hello, %v", args["name"]), nil
}

const addDoc = `Add two integers.

Args:
    a: First addend.
    b: Second addend.`

func TestNewFunc(t *testing.T) {
	tool, err := tools.NewFunc(Add, schema.WithDoc(addDoc))
	require.NoError(t, err)

	assert.Equal(t, "Add", tool.Name())
	assert.Equal(t, "Add two integers.", tool.Description())
	require.NotNil(t, tool.Parameters())

	res, err := tool.Call(context.Background(), `{"a":2,"b":3}`)
	require.NoError(t, err)
	assert.Equal(t, "5", res)
}

func TestFuncTool_Coercion(t *testing.T) {
	tool, err := tools.NewFunc(Add)
	require.NoError(t, err)

	// numeric strings are coerced to the declared integer type
	res, err := tool.Call(context.Background(), `{"a":"2","b":3}`)
	require.NoError(t, err)
	assert.Equal(t, "5", res)
}

func TestFuncTool_BadInput(t *testing.T) {
	tool, err := tools.NewFunc(Add)
	require.NoError(t, err)

	_, err = tool.Call(context.Background(), `not json`)
	assert.ErrorIs(t, err, chatmodel.ErrFailedUnmarshalInput)

	// non-numeric string fails validation
	_, err = tool.Call(context.Background(), `{"a":"x","b":3}`)
	assert.ErrorIs(t, err, chatmodel.ErrFailedUnmarshalInput)

	// missing required parameter
	_, err = tool.Call(context.Background(), `{"a":2}`)
	assert.ErrorIs(t, err, chatmodel.ErrFailedUnmarshalInput)
}

func TestFuncTool_ExecutionError(t *testing.T) {
	tool, err := tools.NewFunc(Divide)
	require.NoError(t, err)

	res, err := tool.Call(context.Background(), `{"a":6,"b":3}`)
	require.NoError(t, err)
	assert.Equal(t, "2", res)

	_, err = tool.Call(context.Background(), `{"a":1,"b":0}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestFuncTool_MapArgs(t *testing.T) {
	doc := `Greet a person.

Args:
    name: Who to greet.`

	tool, err := tools.NewFunc(Greet, schema.WithDoc(doc))
	require.NoError(t, err)

	res, err := tool.Call(context.Background(), `{"name":"Alice"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello, Alice", res)
}

func TestFuncTool_CleansInput(t *testing.T) {
	tool, err := tools.NewFunc(Add)
	require.NoError(t, err)

	res, err := tool.Call(context.Background(), "```json\n{\"a\":2,\"b\":3}\n```")
	require.NoError(t, err)
	assert.Equal(t, "5", res)
}

func TestRegistry(t *testing.T) {
	add, err := tools.NewFunc(Add, schema.WithDoc(addDoc))
	require.NoError(t, err)
	div, err := tools.NewFunc(Divide)
	require.NoError(t, err)

	reg := tools.NewRegistry()
	reg.Register(add, div)

	assert.Equal(t, []string{"Add", "Divide"}, reg.Names())

	got, ok := reg.Get("Add")
	require.True(t, ok)
	assert.Equal(t, "Add", got.Name())

	_, ok = reg.Get("foo")
	assert.False(t, ok)

	defs := reg.Defs()
	require.Len(t, defs, 2)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "Add", defs[0].Function.Name)
	assert.Equal(t, "Add two integers.", defs[0].Function.Description)
	require.NotNil(t, defs[0].Function.Parameters)

	// re-registering a name overwrites, keeping the original position
	add2, err := tools.NewFunc(Add, schema.WithDoc("Replacement."))
	require.NoError(t, err)
	reg.Register(add2)

	assert.Equal(t, []string{"Add", "Divide"}, reg.Names())
	got, ok = reg.Get("Add")
	require.True(t, ok)
	assert.Equal(t, "Replacement.", got.Description())
}

func TestGetDescriptions(t *testing.T) {
	add, err := tools.NewFunc(Add, schema.WithDoc(addDoc))
	require.NoError(t, err)

	out := tools.GetDescriptions(add)
	assert.Contains(t, out, `"Name": "Add"`)
	assert.Contains(t, out, `"Description": "Add two integers."`)
}

func TestRegistry_MockTool(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	params := &jsonschema.Schema{Type: "object"}

	mocked := mocktools.NewMockITool(ctrl)
	mocked.EXPECT().Name().Return("lookup").AnyTimes()
	mocked.EXPECT().Description().Return("Looks things up.").AnyTimes()
	mocked.EXPECT().Parameters().Return(params).AnyTimes()
	mocked.EXPECT().Call(gomock.Any(), `{"q":"answer"}`).Return("42", nil)

	reg := tools.NewRegistry()
	reg.Register(mocked)

	got, ok := reg.Get("lookup")
	require.True(t, ok)

	out, err := got.Call(context.Background(), `{"q":"answer"}`)
	require.NoError(t, err)
	assert.Equal(t, "42", out)

	defs := reg.Defs()
	require.Len(t, defs, 1)
	assert.Equal(t, "lookup", defs[0].Function.Name)
	assert.Same(t, params, defs[0].Function.Parameters)
}
