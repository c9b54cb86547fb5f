package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kataras/figma-variables/pkg/exporter"
)

// Format names accepted by Render.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ErrUnsupportedFormat is returned by Render for unknown format names.
var ErrUnsupportedFormat = errors.New("unknown output format")

// Render formats bundles in the named format. fileName is used as the
// markdown title.
func Render(format string, bundles []exporter.Bundle, fileName string) (string, error) {
	switch format {
	case FormatText, "":
		return ToText(bundles), nil
	case FormatMarkdown, "md":
		return ToMarkdown(bundles, fileName), nil
	case FormatJSON:
		return ToJSON(bundles)
	default:
		return "", fmt.Errorf("%w %q (must be text, markdown or json)", ErrUnsupportedFormat, format)
	}
}

// ToText lists every bundle as its name followed by its lines, with a blank
// line between bundles.
func ToText(bundles []exporter.Bundle) string {
	var sb strings.Builder

	for i, bundle := range bundles {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(bundle.Name)
		sb.WriteString("\n")
		for _, line := range bundle.Variables {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ToJSON renders bundles as the indented data payload of a collectionsReady
// message.
func ToJSON(bundles []exporter.Bundle) (string, error) {
	if bundles == nil {
		bundles = []exporter.Bundle{}
	}

	b, err := json.MarshalIndent(bundles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bundles: %w", err)
	}

	return string(b) + "\n", nil
}

// ToMarkdown transforms exported bundles into a markdown document with an
// index table and one fenced block per collection mode.
func ToMarkdown(bundles []exporter.Bundle, fileName string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Figma Variables - %s\n\n", fileName))
	sb.WriteString("This document contains the variables exported from the Figma file, one section per collection mode.\n\n")

	if len(bundles) == 0 {
		sb.WriteString("_No variables were exported._\n")
		return sb.String()
	}

	sb.WriteString("| Collection mode | Variables |\n")
	sb.WriteString("|-----------------|-----------|\n")
	for _, bundle := range bundles {
		sb.WriteString(fmt.Sprintf("| [%s](#%s) | %d |\n", bundle.Name, anchor(bundle.Name), len(bundle.Variables)))
	}
	sb.WriteString("\n")

	for _, bundle := range bundles {
		sb.WriteString(fmt.Sprintf("## %s\n\n", bundle.Name))
		sb.WriteString("```text\n")
		for _, line := range bundle.Variables {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("```\n\n")
	}

	return sb.String()
}

// anchor returns the heading id markdown renderers derive from a bundle
// name, e.g. "Brand Colors-Dark Mode" links as #brand-colors-dark-mode.
func anchor(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '_' || r == '-':
			return '-'
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}
		return -1
	}, name)
}
