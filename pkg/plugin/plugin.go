// Package plugin connects the exporter to a UI panel: it publishes the
// collection list when a session starts and answers export requests.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kataras/figma-variables/pkg/exporter"
)

// Plugin serves one UI session. It keeps no document state; every entry
// point opens its own store snapshot.
type Plugin struct {
	open   exporter.Opener
	post   Poster
	logger Logger
}

// New returns a Plugin that reads documents through open and answers through
// post. logger may be nil.
func New(open exporter.Opener, post Poster, logger Logger) *Plugin {
	return &Plugin{open: open, post: post, logger: orNop(logger)}
}

// OnActivate publishes the list of collections, or noCollectionFound when
// the document has none. The host calls it once per session.
func (p *Plugin) OnActivate(ctx context.Context) error {
	store, err := p.open(ctx)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}

	refs, err := exporter.New(store).ListCollections(ctx)
	if err != nil {
		return err
	}

	if len(refs) == 0 {
		p.logger.Infof("No variable collections found")
		return p.post.PostMessage(ctx, Message{Type: TypeNoCollectionFound})
	}

	p.logger.Infof("Found %d variable collection(s)", len(refs))
	return p.post.PostMessage(ctx, Message{Type: TypeVariableCollectionsFound, Data: refs})
}

// OnExportRequested exports the selected collections and posts the bundles
// in a single collectionsReady message. An empty selection does nothing.
func (p *Plugin) OnExportRequested(ctx context.Context, selected []string) error {
	if len(selected) == 0 {
		return nil
	}

	store, err := p.open(ctx)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}

	bundles, err := exporter.New(store).ExportSelected(ctx, selected)
	if err != nil {
		return err
	}
	if bundles == nil {
		bundles = []exporter.Bundle{}
	}

	p.logger.Infof("Exported %d bundle(s) from %d selected collection(s)", len(bundles), len(selected))
	return p.post.PostMessage(ctx, Message{Type: TypeCollectionsReady, Data: bundles})
}

// HandleMessage decodes a UI message and dispatches it. Messages of any type
// other than export-selected-collections are ignored.
func (p *Plugin) HandleMessage(ctx context.Context, data []byte) error {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	if req.Type != TypeExportSelectedCollections {
		p.logger.Warnf("Ignoring message of type %q", req.Type)
		return nil
	}

	return p.OnExportRequested(ctx, req.SelectedCollections)
}
