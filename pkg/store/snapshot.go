// Package store provides read-only, per-request snapshots of a file's
// variables, loaded from the Figma API or from a local document.
package store

import (
	"context"
	"slices"

	"github.com/kataras/figma-variables/pkg/figma"
	"github.com/kataras/figma-variables/pkg/variables"
)

// Snapshot is an immutable in-memory copy of a file's collections and
// variables. It satisfies exporter.Store.
type Snapshot struct {
	collections []variables.Collection
	vars        map[string]*variables.Variable
}

// New builds a Snapshot. Collections keep the given order.
func New(collections []variables.Collection, vars []*variables.Variable) *Snapshot {
	s := &Snapshot{
		collections: collections,
		vars:        make(map[string]*variables.Variable, len(vars)),
	}
	for _, v := range vars {
		s.vars[v.ID] = v
	}
	return s
}

// FromResponse converts a local variables API response. Collections are
// enumerated in the order the API returned them. Library collections used by
// the file (remote) are not enumerated, but their variables are kept so that
// aliases to library tokens still resolve to a name.
func FromResponse(resp *figma.LocalVariablesResponse) *Snapshot {
	collections := make([]variables.Collection, 0, len(resp.Meta.CollectionOrder))
	for _, id := range resp.Meta.CollectionOrder {
		c := resp.Meta.VariableCollections[id]
		if c.Remote {
			continue
		}

		modes := make([]variables.Mode, 0, len(c.Modes))
		for _, m := range c.Modes {
			modes = append(modes, variables.Mode{ID: m.ModeID, Name: m.Name})
		}

		collections = append(collections, variables.Collection{
			ID:          c.ID,
			Name:        c.Name,
			Modes:       modes,
			VariableIDs: c.VariableIDs,
		})
	}

	vars := make([]*variables.Variable, 0, len(resp.Meta.VariableOrder))
	for _, id := range resp.Meta.VariableOrder {
		v := resp.Meta.Variables[id]

		values := make(map[string]variables.Value, len(v.ValuesByMode))
		for modeID, raw := range v.ValuesByMode {
			values[modeID] = variables.DecodeValue(raw)
		}

		vars = append(vars, &variables.Variable{
			ID:           v.ID,
			Name:         v.Name,
			CollectionID: v.VariableCollectionID,
			ResolvedType: variables.ResolvedType(v.ResolvedType),
			ValuesByMode: values,
		})
	}

	return New(collections, vars)
}

// Collections returns a copy of the collections in document order.
func (s *Snapshot) Collections(context.Context) ([]variables.Collection, error) {
	return slices.Clone(s.collections), nil
}

// VariableByID returns the variable with the given id, or nil if the
// snapshot has none.
func (s *Snapshot) VariableByID(_ context.Context, id string) (*variables.Variable, error) {
	return s.vars[id], nil
}
