// Package schema derives provider-neutral tool descriptors from Go
// functions and re-shapes them into each provider's function-calling
// dialect.
package schema

import (
	"context"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/funcall-ai/funcall/pkg/llmutils"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrSchemaDerivation is returned when a function signature cannot be
// expressed as a tool schema.
var ErrSchemaDerivation = errors.New("schema derivation failed")

// Canonical parameter type tags.
const (
	TagString  = "string"
	TagInteger = "integer"
	TagNumber  = "number"
	TagBoolean = "boolean"
	TagArray   = "array"
	TagObject  = "object"
)

// ParameterDescriptor describes one parameter of a tool.
type ParameterDescriptor struct {
	// Name is the JSON name of the parameter, unique within a tool.
	Name string
	// Type is the canonical type tag.
	Type string
	// Required is true when the parameter has no default and is not a pointer.
	Required bool
	// Default is carried for documentation only, never injected at call time.
	Default any
	// Description comes from the doc text or the jsonschema struct tag.
	Description string
	// Schema is the full property schema.
	Schema *jsonschema.Schema
}

// ToolDescriptor is the provider-neutral description of a tool. It is
// derived once at registration time and immutable thereafter.
type ToolDescriptor struct {
	Name        string
	Description string
	// Parameters preserves the declaration order of the function arguments.
	Parameters []*ParameterDescriptor
	// Schema is the flattened object schema with ordered properties.
	Schema *jsonschema.Schema
	// ArgsType is the reflected argument type of the function,
	// or nil for the map form.
	ArgsType reflect.Type
}

func (d *ToolDescriptor) String() string {
	return llmutils.ToJSONIndent(d.Schema)
}

// DeriveOption configures Derive.
type DeriveOption func(*deriveOptions)

type deriveOptions struct {
	name string
	doc  string
}

// WithName overrides the name resolved from the function symbol.
// Required for anonymous closures.
func WithName(name string) DeriveOption {
	return func(o *deriveOptions) {
		o.name = name
	}
}

// WithDoc attaches doc text to the tool. The first paragraph becomes the
// tool description; an "Args:" section attaches per-parameter descriptions.
func WithDoc(doc string) DeriveOption {
	return func(o *deriveOptions) {
		o.doc = doc
	}
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
	mapType = reflect.TypeOf(map[string]any{})
)

// Derive builds a ToolDescriptor from a function. The supported shapes are
// `func(ctx context.Context, args T) (R, error)` and `func(args T) (R, error)`
// where T is a struct or map[string]any. For the map form every parameter
// takes the permissive string tag and the parameter list comes from the doc
// "Args:" section only.
func Derive(fn any, opts ...DeriveOption) (*ToolDescriptor, error) {
	var o deriveOptions
	for _, opt := range opts {
		opt(&o)
	}

	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, errors.WithMessagef(ErrSchemaDerivation, "not a function: %T", fn)
	}

	name := o.name
	if name == "" {
		name = funcName(fv)
		if name == "" {
			return nil, errors.WithMessage(ErrSchemaDerivation,
				"function name is not resolvable, use WithName")
		}
	}

	argType, err := argsType(fv.Type())
	if err != nil {
		return nil, err
	}

	description, argDocs := parseDoc(o.doc)

	var params *jsonschema.Schema
	if argType.Kind() == reflect.Map {
		params = mapParameters(argDocs)
	} else {
		params, err = structParameters(argType)
		if err != nil {
			return nil, err
		}
		applyDocs(params, argDocs)
	}

	d := &ToolDescriptor{
		Name:        name,
		Description: description,
		Schema:      params,
		ArgsType:    argType,
	}
	required := make(map[string]bool, len(params.Required))
	for _, r := range params.Required {
		required[r] = true
	}
	for pair := params.Properties.Oldest(); pair != nil; pair = pair.Next() {
		d.Parameters = append(d.Parameters, &ParameterDescriptor{
			Name:        pair.Key,
			Type:        pair.Value.Type,
			Required:    required[pair.Key],
			Default:     pair.Value.Default,
			Description: pair.Value.Description,
			Schema:      pair.Value,
		})
	}

	return d, nil
}

var anonFuncRe = regexp.MustCompile(`^func\d+(\.\d+)*$`)

func funcName(fv reflect.Value) string {
	f := runtime.FuncForPC(fv.Pointer())
	if f == nil {
		return ""
	}
	full := f.Name()
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		full = full[idx+1:]
	}
	full = strings.TrimSuffix(full, "-fm")
	parts := strings.Split(full, ".")
	name := parts[len(parts)-1]
	if name == "" || anonFuncRe.MatchString(name) {
		return ""
	}
	return name
}

func argsType(ft reflect.Type) (reflect.Type, error) {
	if ft.NumIn() < 1 || ft.NumIn() > 2 {
		return nil, errors.WithMessagef(ErrSchemaDerivation,
			"unsupported signature: want 1 or 2 arguments, got %d", ft.NumIn())
	}
	if ft.NumIn() == 2 && ft.In(0) != ctxType {
		return nil, errors.WithMessage(ErrSchemaDerivation,
			"unsupported signature: first of two arguments must be context.Context")
	}
	if ft.NumOut() != 2 || ft.Out(1) != errType {
		return nil, errors.WithMessage(ErrSchemaDerivation,
			"unsupported signature: want (result, error) return values")
	}

	argType := ft.In(ft.NumIn() - 1)
	if argType.Kind() == reflect.Pointer {
		argType = argType.Elem()
	}
	switch {
	case argType.Kind() == reflect.Struct:
		return argType, nil
	case argType == mapType:
		return argType, nil
	default:
		return nil, errors.WithMessagef(ErrSchemaDerivation,
			"unsupported argument type: %s", argType.String())
	}
}

// structParameters reflects the struct into a flattened object schema and
// normalizes the required set: pointer fields and fields with a default
// are optional.
func structParameters(t reflect.Type) (*jsonschema.Schema, error) {
	if err := checkRepresentable(t, map[reflect.Type]bool{}); err != nil {
		return nil, err
	}

	params := ToFunctionSchema(t, JSONSchema(t))
	if params.Properties == nil {
		params.Properties = orderedmap.New[string, *jsonschema.Schema]()
	}

	optional := map[string]bool{}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			optional[jsonName(f)] = true
		}
	}
	for pair := params.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Default != nil {
			optional[pair.Key] = true
		}
		if pair.Value.Type == "" && pair.Value.Ref == "" {
			// unannotated, fall back to the permissive tag
			pair.Value.Type = TagString
		}
	}
	if len(optional) > 0 {
		required := params.Required[:0]
		for _, name := range params.Required {
			if !optional[name] {
				required = append(required, name)
			}
		}
		params.Required = required
	}
	if params.Required == nil {
		params.Required = []string{}
	}

	return params, nil
}

func jsonName(f reflect.StructField) string {
	tag := strings.Split(f.Tag.Get("json"), ",")[0]
	if tag != "" && tag != "-" {
		return tag
	}
	return f.Name
}

func checkRepresentable(t reflect.Type, seen map[reflect.Type]bool) error {
	if seen[t] {
		return nil
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return errors.WithMessagef(ErrSchemaDerivation,
			"unrepresentable type: %s", t.String())
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return checkRepresentable(t.Elem(), seen)
	case reflect.Map:
		return checkRepresentable(t.Elem(), seen)
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if err := checkRepresentable(f.Type, seen); err != nil {
				return errors.WithMessagef(err, "field %s", f.Name)
			}
		}
	}
	return nil
}

// mapParameters builds the permissive schema for the map[string]any form:
// every documented argument is a required string.
func mapParameters(args []docArg) *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	required := []string{}
	for _, a := range args {
		props.Set(a.name, &jsonschema.Schema{
			Type:        TagString,
			Description: a.desc,
		})
		required = append(required, a.name)
	}
	return &jsonschema.Schema{
		Type:       TagObject,
		Properties: props,
		Required:   required,
	}
}

// applyDocs attaches doc-section descriptions by JSON name. Unknown names
// are ignored. The doc text wins over a struct tag description.
func applyDocs(params *jsonschema.Schema, args []docArg) {
	for _, a := range args {
		if prop, ok := params.Properties.Get(a.name); ok && a.desc != "" {
			prop.Description = a.desc
		}
	}
}
