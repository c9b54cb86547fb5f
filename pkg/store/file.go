package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kataras/figma-variables/pkg/figma"
	"github.com/kataras/figma-variables/pkg/variables"
)

// ErrUnsupportedDocument is returned by LoadFile for unknown file extensions.
var ErrUnsupportedDocument = errors.New("unsupported document format")

// Document is the hand-written YAML form of a variables file:
//
//	collections:
//	  - name: Theme
//	    modes: [Light, Dark]
//	    variables:
//	      - name: color/bg
//	        type: color
//	        values:
//	          Light: {alias: white}
//	          Dark: "#000000"
//
// Collection and variable ids default to their names. Mode ids are
// "<collection id>:<index>". Color values may be hex strings or r/g/b/a maps,
// aliases reference variables by id.
type Document struct {
	Collections []DocumentCollection `yaml:"collections"`
}

// DocumentCollection is one collection of a Document.
type DocumentCollection struct {
	ID        string             `yaml:"id"`
	Name      string             `yaml:"name"`
	Modes     []string           `yaml:"modes"`
	Variables []DocumentVariable `yaml:"variables"`
}

// DocumentVariable is one variable of a DocumentCollection. Values are keyed
// by mode name.
type DocumentVariable struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`
	Values map[string]any `yaml:"values"`
}

// LoadFile reads a variables document. ".json" files hold a local variables
// API response, ".yaml"/".yml" files a Document.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var resp figma.LocalVariablesResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return FromResponse(&resp), nil
	case ".yaml", ".yml":
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return FromDocument(&doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDocument, path)
	}
}

// FromDocument converts a YAML Document.
func FromDocument(doc *Document) (*Snapshot, error) {
	var (
		collections []variables.Collection
		vars        []*variables.Variable
		seen        = make(map[string]bool)
	)

	for _, dc := range doc.Collections {
		if dc.Name == "" {
			return nil, errors.New("collection without a name")
		}
		if len(dc.Modes) == 0 {
			return nil, fmt.Errorf("collection %q has no modes", dc.Name)
		}

		c := variables.Collection{ID: dc.ID, Name: dc.Name}
		if c.ID == "" {
			c.ID = dc.Name
		}

		modeIDs := make(map[string]string, len(dc.Modes))
		for i, name := range dc.Modes {
			id := c.ID + ":" + strconv.Itoa(i)
			modeIDs[name] = id
			c.Modes = append(c.Modes, variables.Mode{ID: id, Name: name})
		}

		for _, dv := range dc.Variables {
			v := &variables.Variable{
				ID:           dv.ID,
				Name:         dv.Name,
				CollectionID: c.ID,
				ResolvedType: variables.ParseResolvedType(dv.Type),
				ValuesByMode: make(map[string]variables.Value, len(dv.Values)),
			}
			if v.ID == "" {
				v.ID = dv.Name
			}
			if seen[v.ID] {
				return nil, fmt.Errorf("duplicate variable id %q", v.ID)
			}
			seen[v.ID] = true

			for modeName, raw := range dv.Values {
				modeID, ok := modeIDs[modeName]
				if !ok {
					return nil, fmt.Errorf("variable %q: unknown mode %q in collection %q", v.Name, modeName, c.Name)
				}
				v.ValuesByMode[modeID] = documentValue(raw, v.ResolvedType)
			}

			c.VariableIDs = append(c.VariableIDs, v.ID)
			vars = append(vars, v)
		}

		collections = append(collections, c)
	}

	return New(collections, vars), nil
}

func documentValue(raw any, t variables.ResolvedType) variables.Value {
	if m, ok := raw.(map[string]any); ok {
		if target, ok := m["alias"]; ok {
			id, _ := target.(string)
			return variables.Alias{ID: id}
		}
	}

	if s, ok := raw.(string); ok && t == variables.TypeColor {
		if c, err := variables.ParseHexColor(s); err == nil {
			return c
		}
	}

	return variables.FromAny(raw)
}
