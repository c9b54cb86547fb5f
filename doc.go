// Package figmavariables exports Figma variables (design tokens: colors,
// numbers, booleans, strings) organized in collections and modes into a flat,
// human-readable text form.
//
// Every selected collection produces one bundle per mode, named
// "<collection>-<mode>", whose lines have the form
//
//	"color/bg" : "#ffffff"
//
// Colors render as #rrggbb when opaque and rgba(R, G, B, A) otherwise; an
// alias renders as the name of the variable it references (one hop only).
//
// The CLI lives in cmd/figma-variables; this root package exposes the same
// pipeline as a Go API. The plugin package serves the same export to a UI
// panel over WebSocket or stdio.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named figmavariables:
//
//	import "github.com/kataras/figma-variables" // package figmavariables
//
// # Quick start
//
//	result, err := figmavariables.Run(ctx, figmavariables.Options{
//	    AccessToken: os.Getenv("FIGMA_TOKEN"),
//	    FileURL:     "https://www.figma.com/design/ABC123/Tokens",
//	    Collections: []string{"Theme"},
//	    Format:      "markdown",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("variables.md", []byte(result.Output), 0644)
//
// Set [Options.DocumentPath] instead of FileURL to export from a local
// .json (API response) or .yaml document.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. A *zap.SugaredLogger
// satisfies the interface as is.
package figmavariables
