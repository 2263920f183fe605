package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/funcall-ai/funcall/chatmodel"
	"github.com/funcall-ai/funcall/pkg/llmutils"
	"github.com/funcall-ai/funcall/schema"
	"github.com/invopop/jsonschema"
	jsval "github.com/santhosh-tekuri/jsonschema/v6"
)

// FuncOption configures NewFunc; see schema.WithName and schema.WithDoc.
type FuncOption = schema.DeriveOption

// FuncTool wraps a plain Go function into an ITool. The schema is derived
// once at construction; incoming arguments are validated against it and
// coerced to the declared parameter types before the function is invoked.
type FuncTool struct {
	desc     *schema.ToolDescriptor
	compiled *jsval.Schema
	fv       reflect.Value
	argType  reflect.Type
	hasCtx   bool
}

var _ ITool = (*FuncTool)(nil)

// NewFunc wraps fn into a tool. The supported shapes are
// `func(ctx context.Context, args T) (R, error)` and `func(args T) (R, error)`
// where T is a struct or map[string]any.
func NewFunc(fn any, opts ...FuncOption) (*FuncTool, error) {
	d, err := schema.Derive(fn, opts...)
	if err != nil {
		return nil, err
	}

	compiled, err := compileSchema(d.Schema)
	if err != nil {
		return nil, errors.WithMessagef(err, "tool %s", d.Name)
	}

	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	return &FuncTool{
		desc:     d,
		compiled: compiled,
		fv:       fv,
		argType:  ft.In(ft.NumIn() - 1),
		hasCtx:   ft.NumIn() == 2,
	}, nil
}

func compileSchema(s *jsonschema.Schema) (*jsval.Schema, error) {
	js, err := json.Marshal(s)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	doc, err := jsval.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	c := jsval.NewCompiler()
	if err := c.AddResource("tool.json", doc); err != nil {
		return nil, errors.WithStack(err)
	}
	sch, err := c.Compile("tool.json")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return sch, nil
}

func (t *FuncTool) Name() string {
	return t.desc.Name
}

func (t *FuncTool) Description() string {
	return t.desc.Description
}

func (t *FuncTool) Parameters() *jsonschema.Schema {
	return t.desc.Schema
}

// Descriptor returns the derived canonical descriptor.
func (t *FuncTool) Descriptor() *schema.ToolDescriptor {
	return t.desc
}

// Call validates and coerces the JSON input, then invokes the wrapped
// function. A non-string result is rendered as JSON.
func (t *FuncTool) Call(ctx context.Context, input string) (string, error) {
	clean := llmutils.CleanJSON([]byte(input))
	if len(bytes.TrimSpace(clean)) == 0 {
		clean = []byte("{}")
	}

	var args map[string]any
	if err := json.Unmarshal(clean, &args); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	args = Coerce(args, t.desc)

	js, err := json.Marshal(args)
	if err != nil {
		return "", errors.WithStack(err)
	}
	doc, err := jsval.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	if err := t.compiled.Validate(doc); err != nil {
		return "", errors.WithMessagef(chatmodel.ErrFailedUnmarshalInput, "%s", err.Error())
	}

	argv := reflect.New(t.desc.ArgsType)
	if t.desc.ArgsType.Kind() == reflect.Map {
		argv.Elem().Set(reflect.ValueOf(args))
	} else if err := json.Unmarshal(js, argv.Interface()); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}

	in := argv.Elem()
	if t.argType.Kind() == reflect.Pointer {
		in = argv
	}
	callArgs := []reflect.Value{in}
	if t.hasCtx {
		callArgs = []reflect.Value{reflect.ValueOf(ctx), in}
	}

	out := t.fv.Call(callArgs)
	if errv := out[1]; !errv.IsNil() {
		return "", errors.WithMessagef(errv.Interface().(error), "tool %s", t.desc.Name)
	}

	res := out[0].Interface()
	if s, ok := res.(string); ok {
		return s, nil
	}
	return llmutils.ToJSON(res), nil
}
