package plugin

import (
	"context"
)

// Message types exchanged with the UI.
const (
	// TypeExportSelectedCollections is the only request the UI sends.
	TypeExportSelectedCollections = "export-selected-collections"

	TypeVariableCollectionsFound = "variableCollectionsFound"
	TypeNoCollectionFound        = "noCollectionFound"
	TypeCollectionsReady         = "collectionsReady"
)

// Request is a message from the UI.
type Request struct {
	Type                string   `json:"type"`
	SelectedCollections []string `json:"selectedCollections"`
}

// Message is a message to the UI. Data is nil for noCollectionFound,
// a []exporter.CollectionRef for variableCollectionsFound and a
// []exporter.Bundle for collectionsReady.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Poster delivers messages to the UI.
type Poster interface {
	PostMessage(ctx context.Context, msg Message) error
}

// PosterFunc adapts a function to the Poster interface.
type PosterFunc func(ctx context.Context, msg Message) error

// PostMessage calls f(ctx, msg).
func (f PosterFunc) PostMessage(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

func orNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
