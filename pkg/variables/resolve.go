package variables

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Resolve renders a stored value of the given resolved type into its
// canonical form.
//
// Aliases are followed exactly one hop: the result is the name of the
// referenced variable, not its value. A missing target, a malformed alias,
// a nil raw value or an unsupported resolved type all yield ok == false.
// Colors become "#rrggbb" or "rgba(...)" strings; every other direct value
// is returned unchanged.
//
// The only error Resolve returns is one reported by lookup itself.
func Resolve(ctx context.Context, raw Value, resolvedType ResolvedType, lookup Lookup) (Value, bool, error) {
	if raw == nil || !resolvedType.Supported() {
		return nil, false, nil
	}

	if alias, isAlias := raw.(Alias); isAlias {
		if alias.ID == "" {
			return nil, false, nil
		}

		target, err := lookup.VariableByID(ctx, alias.ID)
		if err != nil {
			return nil, false, fmt.Errorf("resolve alias %s: %w", alias.ID, err)
		}
		if target == nil {
			return nil, false, nil
		}

		return String(target.Name), true, nil
	}

	switch resolvedType {
	case TypeColor:
		if c, isColor := raw.(Color); isColor {
			return String(FormatColor(c)), true, nil
		}
	case TypeBoolean:
		if b, isBool := raw.(Boolean); isBool {
			return b, true, nil
		}
	}

	// FLOAT, STRING and anything the declared type does not match.
	return raw, true, nil
}

// ResolveMode resolves the value v holds for modeID.
func ResolveMode(ctx context.Context, v *Variable, modeID string, lookup Lookup) (Value, bool, error) {
	return Resolve(ctx, v.ValuesByMode[modeID], v.ResolvedType, lookup)
}

// FormatColor converts c to "#rrggbb" when fully opaque, and to
// "rgba(R, G, B, A)" with a four-decimal alpha otherwise.
func FormatColor(c Color) string {
	r, g, b := channel(c.R), channel(c.G), channel(c.B)

	if c.A != 1 {
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, fixed4(c.A))
	}

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// channel maps a [0, 1] component onto 0-255. Out of range input is clamped
// so the hex form always has two digits per channel.
func channel(v float64) int {
	n := int(math.Round(v * 255))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

// fixed4 prints f with exactly four decimals. The exact binary value of f is
// rounded to the nearest multiple of 0.0001, with ties going to the larger
// magnitude, so 0.03125 prints as 0.0313 where %.4f would print 0.0312.
func fixed4(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return FormatNumber(f)
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	scaled := new(big.Float).SetPrec(256).SetFloat64(f)
	scaled.Mul(scaled, big.NewFloat(1e4))

	n, _ := scaled.Int(nil)
	rest := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetInt(n))
	if rest.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	digits := n.String()
	if len(digits) < 5 {
		digits = strings.Repeat("0", 5-len(digits)) + digits
	}
	if n.Sign() == 0 {
		sign = ""
	}
	return sign + digits[:len(digits)-4] + "." + digits[len(digits)-4:]
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (leading '#'
// optional) into a Color.
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}

	parts := make([]float64, 0, 4)
	for i := 0; i < len(hex); i += 2 {
		n, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		parts = append(parts, float64(n)/255)
	}

	c := Color{R: parts[0], G: parts[1], B: parts[2], A: 1}
	if len(parts) == 4 {
		c.A = parts[3]
	}

	return c, nil
}

// FormatNumber prints f the way a JavaScript host converts a number to text:
// shortest round-trip digits, exponent form only for very large or very
// small magnitudes.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	// Go writes "1e-07"; the host writes "1e-7".
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}

	return mantissa + "e" + exp[:1] + digits
}
