package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Parameter types understood by the registry.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Param declares one tool argument.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     any
	Minimum     *float64
	Maximum     *float64
	Enum        []string
	Pattern     string
	// Clamp pulls out-of-range numbers into [Minimum, Maximum] instead of rejecting them.
	Clamp bool
}

// Bound is a helper for Param.Minimum and Param.Maximum.
func Bound(v float64) *float64 { return &v }

func jsonSchema(params []Param) map[string]any {
	props := map[string]any{}
	required := []string{}
	for _, p := range params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if p.Minimum != nil {
			prop["minimum"] = *p.Minimum
		}
		if p.Maximum != nil {
			prop["maximum"] = *p.Maximum
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Pattern != "" {
			prop["pattern"] = p.Pattern
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func compileSchema(schema map[string]any) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
}

// prepare drops nulls, coerces loosely typed values, clamps and fills defaults.
// The result is what gets validated and handed to the handler.
func prepare(params []Param, args Args) Args {
	out := Args{}
	for k, v := range args {
		if v != nil {
			out[k] = v
		}
	}
	for _, p := range params {
		v, ok := out[p.Name]
		if !ok {
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		v = coerce(p.Type, v)
		if p.Clamp {
			v = clamp(v, p.Minimum, p.Maximum)
		}
		out[p.Name] = v
	}
	return out
}

func coerce(typ string, v any) any {
	switch typ {
	case TypeInteger, TypeNumber:
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
		}
	case TypeBoolean:
		if s, ok := v.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
	case TypeString:
		switch x := v.(type) {
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(x)
		}
	}
	return v
}

func clamp(v any, lo, hi *float64) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	if lo != nil {
		f = math.Max(f, *lo)
	}
	if hi != nil {
		f = math.Min(f, *hi)
	}
	return f
}

func validate(schema *gojsonschema.Schema, args Args) error {
	res, err := schema.Validate(gojsonschema.NewGoLoader(map[string]any(args)))
	if err != nil {
		return fmt.Errorf("validação de argumentos: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("argumentos inválidos: %s", strings.Join(msgs, "; "))
}
