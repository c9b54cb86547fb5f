package variables

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ResolvedType is the semantic kind a variable's value is interpreted as.
type ResolvedType string

// Supported resolved types. Any other value is carried through as-is and
// treated as unsupported by Resolve.
const (
	TypeColor   ResolvedType = "COLOR"
	TypeFloat   ResolvedType = "FLOAT"
	TypeBoolean ResolvedType = "BOOLEAN"
	TypeString  ResolvedType = "STRING"
)

// Supported reports whether t is one of the four kinds Resolve renders.
func (t ResolvedType) Supported() bool {
	switch t {
	case TypeColor, TypeFloat, TypeBoolean, TypeString:
		return true
	}
	return false
}

// ParseResolvedType normalizes s (case-insensitive) into a ResolvedType.
// Unknown names are kept upper-cased rather than rejected.
func ParseResolvedType(s string) ResolvedType {
	return ResolvedType(strings.ToUpper(strings.TrimSpace(s)))
}

// Value is a variable value as stored in the document: one of Color, Float,
// Boolean, String, Alias, or Unknown. The same type carries the resolved
// result of Resolve, which is never an Alias.
type Value interface {
	fmt.Stringer
	isValue()
}

// Color is an RGBA color with float channels in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Float is a numeric variable value.
type Float float64

// Boolean is a boolean variable value.
type Boolean bool

// String is a text variable value.
type String string

// Alias references another variable by id instead of holding a value.
type Alias struct {
	ID string `json:"id"`
}

// Unknown holds a stored value whose shape is not recognized. It renders as
// its JSON form so that values of kinds added later still show up.
type Unknown struct {
	Raw any
}

func (Color) isValue()   {}
func (Float) isValue()   {}
func (Boolean) isValue() {}
func (String) isValue()  {}
func (Alias) isValue()   {}
func (Unknown) isValue() {}

func (c Color) String() string { return FormatColor(c) }

func (f Float) String() string { return FormatNumber(float64(f)) }

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (s String) String() string { return string(s) }

func (a Alias) String() string { return a.ID }

func (u Unknown) String() string {
	if s, ok := u.Raw.(string); ok {
		return s
	}
	b, err := json.Marshal(u.Raw)
	if err != nil {
		return fmt.Sprint(u.Raw)
	}
	return string(b)
}

// Mode is a named axis of variation within a collection, e.g. light/dark.
type Mode struct {
	ID   string
	Name string
}

// Collection groups variables sharing a set of modes.
type Collection struct {
	ID          string
	Name        string
	Modes       []Mode
	VariableIDs []string
}

// Variable is a named, typed design value with one stored value per mode.
type Variable struct {
	ID           string
	Name         string
	CollectionID string
	ResolvedType ResolvedType
	ValuesByMode map[string]Value
}

// Lookup finds variables by id. A nil variable with a nil error means the
// variable does not exist (deleted or never created).
type Lookup interface {
	VariableByID(ctx context.Context, id string) (*Variable, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, id string) (*Variable, error)

// VariableByID calls f(ctx, id).
func (f LookupFunc) VariableByID(ctx context.Context, id string) (*Variable, error) {
	return f(ctx, id)
}
