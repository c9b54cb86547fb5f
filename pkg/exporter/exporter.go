// Package exporter turns selected variable collections into named bundles of
// `"name" : "value"` lines, one bundle per collection mode.
package exporter

import (
	"context"
	"fmt"
	"slices"

	"github.com/kataras/figma-variables/pkg/variables"
)

// Store is the read-only view of the document the exporter works against.
// Collections returns collections in the document's own enumeration order.
type Store interface {
	variables.Lookup
	Collections(ctx context.Context) ([]variables.Collection, error)
}

// Bundle is the exported representation of one collection mode.
type Bundle struct {
	Name      string   `json:"name"`
	Variables []string `json:"variables"`
}

// CollectionRef identifies a collection for selection lists.
type CollectionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Exporter resolves variables of selected collections against a Store.
// It holds no state between calls; every call reads the store afresh.
type Exporter struct {
	store Store
}

// New returns an Exporter reading from store.
func New(store Store) *Exporter {
	return &Exporter{store: store}
}

// ListCollections returns the id and name of every collection.
func (e *Exporter) ListCollections(ctx context.Context) ([]CollectionRef, error) {
	collections, err := e.store.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	refs := make([]CollectionRef, 0, len(collections))
	for _, c := range collections {
		refs = append(refs, CollectionRef{ID: c.ID, Name: c.Name})
	}

	return refs, nil
}

// ExportSelected builds one bundle per mode of every collection whose id is
// in selected, in store order. Variables that no longer exist are skipped and
// values that cannot be resolved render as an empty string. Lookups run one
// after another so the line order always matches the stored order.
func (e *Exporter) ExportSelected(ctx context.Context, selected []string) ([]Bundle, error) {
	collections, err := e.store.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch collections: %w", err)
	}

	var bundles []Bundle
	for _, collection := range collections {
		if !slices.Contains(selected, collection.ID) {
			continue
		}

		for _, mode := range collection.Modes {
			bundle, err := e.exportMode(ctx, collection, mode)
			if err != nil {
				return nil, err
			}
			bundles = append(bundles, bundle)
		}
	}

	return bundles, nil
}

func (e *Exporter) exportMode(ctx context.Context, collection variables.Collection, mode variables.Mode) (Bundle, error) {
	bundle := Bundle{
		Name:      BundleName(collection, mode),
		Variables: make([]string, 0, len(collection.VariableIDs)),
	}

	for _, id := range collection.VariableIDs {
		if err := ctx.Err(); err != nil {
			return Bundle{}, err
		}

		v, err := e.store.VariableByID(ctx, id)
		if err != nil {
			return Bundle{}, fmt.Errorf("fetch variable %s: %w", id, err)
		}
		if v == nil {
			continue
		}

		value, ok, err := variables.ResolveMode(ctx, v, mode.ID, e.store)
		if err != nil {
			return Bundle{}, fmt.Errorf("variable %q in %s: %w", v.Name, bundle.Name, err)
		}

		rendered := ""
		if ok {
			rendered = value.String()
		}

		bundle.Variables = append(bundle.Variables, Line(v.Name, rendered))
	}

	return bundle, nil
}

// BundleName names the bundle of a collection mode: "<collection>-<mode>".
func BundleName(collection variables.Collection, mode variables.Mode) string {
	return collection.Name + "-" + mode.Name
}

// Line renders one exported variable as `"name" : "value"`.
func Line(name, value string) string {
	return `"` + name + `" : "` + value + `"`
}

// Opener yields a fresh Store for one request. Implementations must not share
// cached document state between calls.
type Opener func(ctx context.Context) (Store, error)
