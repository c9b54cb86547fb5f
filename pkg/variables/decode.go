package variables

import (
	"encoding/json"
)

// aliasType is the discriminator Figma puts on variable references.
const aliasType = "VARIABLE_ALIAS"

// DecodeValue converts one entry of a Figma valuesByMode object into a Value.
// Empty or unparsable input yields nil, which Resolve treats as missing.
func DecodeValue(data json.RawMessage) Value {
	if len(data) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}

	return FromAny(v)
}

// FromAny converts a generically decoded value (from encoding/json or
// yaml.v3) into a Value.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return Boolean(x)
	case string:
		return String(x)
	case float64:
		return Float(x)
	case float32:
		return Float(x)
	case int:
		return Float(x)
	case int64:
		return Float(x)
	case uint64:
		return Float(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Unknown{Raw: x.String()}
		}
		return Float(f)
	case map[string]any:
		return fromObject(x)
	default:
		return Unknown{Raw: v}
	}
}

func fromObject(m map[string]any) Value {
	if t, _ := m["type"].(string); t == aliasType {
		id, _ := m["id"].(string)
		return Alias{ID: id}
	}

	r, okR := number(m["r"])
	g, okG := number(m["g"])
	b, okB := number(m["b"])
	if okR && okG && okB {
		c := Color{R: r, G: g, B: b, A: 1}
		if a, ok := number(m["a"]); ok {
			c.A = a
		}
		return c
	}

	return Unknown{Raw: m}
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}
