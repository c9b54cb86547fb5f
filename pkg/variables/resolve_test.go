package variables

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hexPattern  = regexp.MustCompile(`^#[0-9a-f]{6}$`)
	rgbaPattern = regexp.MustCompile(`^rgba\(\d+, \d+, \d+, \d+\.\d{4}\)$`)
)

// mapLookup serves variables from a map and counts calls.
type mapLookup struct {
	vars  map[string]*Variable
	calls int
}

func (m *mapLookup) VariableByID(_ context.Context, id string) (*Variable, error) {
	m.calls++
	return m.vars[id], nil
}

func TestFormatColor(t *testing.T) {
	tests := []struct {
		name  string
		color Color
		want  string
	}{
		{name: "opaque red", color: Color{R: 1, G: 0, B: 0, A: 1}, want: "#ff0000"},
		{name: "opaque black", color: Color{A: 1}, want: "#000000"},
		{name: "opaque white", color: Color{R: 1, G: 1, B: 1, A: 1}, want: "#ffffff"},
		{name: "single digit channels are zero padded", color: Color{R: 1.0 / 255, G: 15.0 / 255, B: 0, A: 1}, want: "#010f00"},
		{name: "half gray translucent", color: Color{R: 0.5, G: 0.5, B: 0.5, A: 0.5}, want: "rgba(128, 128, 128, 0.5000)"},
		{name: "fully transparent", color: Color{R: 0, G: 0, B: 1, A: 0}, want: "rgba(0, 0, 255, 0.0000)"},
		{name: "alpha rounded to four places", color: Color{R: 1, G: 1, B: 1, A: 0.123456}, want: "rgba(255, 255, 255, 0.1235)"},
		{name: "alpha tie rounds up", color: Color{A: 0.03125}, want: "rgba(0, 0, 0, 0.0313)"},
		{name: "alpha tie rounds up again", color: Color{A: 0.15625}, want: "rgba(0, 0, 0, 0.1563)"},
		{name: "alpha tie on even digit", color: Color{A: 0.40625}, want: "rgba(0, 0, 0, 0.4063)"},
		{name: "alpha just above a tie", color: Color{A: 0.00005}, want: "rgba(0, 0, 0, 0.0001)"},
		{name: "alpha of hex 80", color: Color{A: 128.0 / 255}, want: "rgba(0, 0, 0, 0.5020)"},
		{name: "out of range channels clamp", color: Color{R: 1.2, G: -0.1, B: 0, A: 1}, want: "#ff0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatColor(tt.color))
		})
	}
}

func TestFormatColorProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		c := Color{R: rng.Float64(), G: rng.Float64(), B: rng.Float64(), A: 1}

		hex := FormatColor(c)
		require.Regexp(t, hexPattern, hex)

		parsed, err := ParseHexColor(hex)
		require.NoError(t, err)
		assert.Equal(t, hex, FormatColor(parsed), "round trip of %+v", c)

		c.A = rng.Float64()
		if c.A == 1 {
			continue
		}
		assert.Regexp(t, rgbaPattern, FormatColor(c))
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Color
		wantErr bool
	}{
		{name: "six digits", input: "#ff0000", want: Color{R: 1, A: 1}},
		{name: "without hash", input: "00ff00", want: Color{G: 1, A: 1}},
		{name: "short form", input: "#00f", want: Color{B: 1, A: 1}},
		{name: "with alpha", input: "#ffffff00", want: Color{R: 1, G: 1, B: 1, A: 0}},
		{name: "upper case", input: "#FFFFFF", want: Color{R: 1, G: 1, B: 1, A: 1}},
		{name: "wrong length", input: "#12345", wantErr: true},
		{name: "not hex", input: "#gggggg", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{16, "16"},
		{0.5, "0.5"},
		{-4, "-4"},
		{0, "0"},
		{1.25e-3, "0.00125"},
		{1e-7, "1e-7"},
		{1.5e21, "1.5e+21"},
		{1e20, "100000000000000000000"},
		{0.1 + 0.2, "0.30000000000000004"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}

func TestResolveDirectValues(t *testing.T) {
	lookup := &mapLookup{}

	tests := []struct {
		name   string
		raw    Value
		typ    ResolvedType
		want   Value
		wantOK bool
	}{
		{name: "opaque color", raw: Color{R: 1, A: 1}, typ: TypeColor, want: String("#ff0000"), wantOK: true},
		{name: "translucent color", raw: Color{R: 0.5, G: 0.5, B: 0.5, A: 0.5}, typ: TypeColor, want: String("rgba(128, 128, 128, 0.5000)"), wantOK: true},
		{name: "boolean true", raw: Boolean(true), typ: TypeBoolean, want: Boolean(true), wantOK: true},
		{name: "boolean false", raw: Boolean(false), typ: TypeBoolean, want: Boolean(false), wantOK: true},
		{name: "float", raw: Float(12.5), typ: TypeFloat, want: Float(12.5), wantOK: true},
		{name: "string", raw: String("Inter"), typ: TypeString, want: String("Inter"), wantOK: true},
		{name: "mismatched kind passes through", raw: Float(3), typ: TypeColor, want: Float(3), wantOK: true},
		{name: "unknown shape passes through", raw: Unknown{Raw: map[string]any{"family": "Inter"}}, typ: TypeString, want: Unknown{Raw: map[string]any{"family": "Inter"}}, wantOK: true},
		{name: "missing value", raw: nil, typ: TypeFloat, wantOK: false},
		{name: "unsupported type", raw: String("Inter"), typ: ResolvedType("FONT"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Resolve(context.Background(), tt.raw, tt.typ, lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Zero(t, lookup.calls, "direct values must not hit the lookup")
}

func TestResolveAlias(t *testing.T) {
	lookup := &mapLookup{vars: map[string]*Variable{
		"VariableID:1": {ID: "VariableID:1", Name: "color/brand/primary", ResolvedType: TypeColor},
		"VariableID:2": {
			ID:           "VariableID:2",
			Name:         "color/button/bg",
			ResolvedType: TypeColor,
			ValuesByMode: map[string]Value{"m1": Alias{ID: "VariableID:1"}},
		},
	}}
	ctx := context.Background()

	t.Run("existing target renders its name", func(t *testing.T) {
		lookup.calls = 0
		got, ok, err := Resolve(ctx, Alias{ID: "VariableID:1"}, TypeColor, lookup)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, String("color/brand/primary"), got)
		assert.Equal(t, 1, lookup.calls)
	})

	t.Run("chained alias stops after one hop", func(t *testing.T) {
		lookup.calls = 0
		got, ok, err := Resolve(ctx, Alias{ID: "VariableID:2"}, TypeColor, lookup)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, String("color/button/bg"), got)
		assert.Equal(t, 1, lookup.calls)
	})

	t.Run("missing target yields nothing", func(t *testing.T) {
		got, ok, err := Resolve(ctx, Alias{ID: "VariableID:404"}, TypeFloat, lookup)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("malformed alias yields nothing without lookup", func(t *testing.T) {
		lookup.calls = 0
		_, ok, err := Resolve(ctx, Alias{}, TypeString, lookup)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, lookup.calls)
	})

	t.Run("alias with unsupported type is not looked up", func(t *testing.T) {
		lookup.calls = 0
		_, ok, err := Resolve(ctx, Alias{ID: "VariableID:1"}, ResolvedType("FONT"), lookup)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, lookup.calls)
	})

	t.Run("lookup errors are returned", func(t *testing.T) {
		boom := errors.New("boom")
		failing := LookupFunc(func(context.Context, string) (*Variable, error) { return nil, boom })

		_, ok, err := Resolve(ctx, Alias{ID: "VariableID:1"}, TypeColor, failing)
		assert.False(t, ok)
		assert.ErrorIs(t, err, boom)
	})
}

func TestResolveIsDeterministic(t *testing.T) {
	lookup := &mapLookup{vars: map[string]*Variable{"a": {ID: "a", Name: "spacing/base"}}}
	values := []struct {
		raw Value
		typ ResolvedType
	}{
		{Color{R: 0.2, G: 0.4, B: 0.6, A: 0.8}, TypeColor},
		{Alias{ID: "a"}, TypeFloat},
		{Float(8), TypeFloat},
	}

	for _, v := range values {
		first, ok1, err1 := Resolve(context.Background(), v.raw, v.typ, lookup)
		second, ok2, err2 := Resolve(context.Background(), v.raw, v.typ, lookup)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, ok1, ok2)
		assert.Equal(t, first, second)
	}
}

func TestResolveMode(t *testing.T) {
	v := &Variable{
		ID:           "v",
		Name:         "radius/md",
		ResolvedType: TypeFloat,
		ValuesByMode: map[string]Value{"compact": Float(4), "comfortable": Float(8)},
	}

	got, ok, err := ResolveMode(context.Background(), v, "comfortable", &mapLookup{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "8", got.String())

	_, ok, err = ResolveMode(context.Background(), v, "missing-mode", &mapLookup{})
	require.NoError(t, err)
	assert.False(t, ok)
}
