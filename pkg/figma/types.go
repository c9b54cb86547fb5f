package figma

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FileResponse holds the file metadata returned by the Figma file API endpoint
// when requested with depth=1. The document tree itself is not needed here.
type FileResponse struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Version      string `json:"version"`
}

// LocalVariablesResponse represents the response of the local variables endpoint
// (GET /v1/files/:key/variables/local).
type LocalVariablesResponse struct {
	Status int           `json:"status"`
	Error  bool          `json:"error"`
	Meta   VariablesMeta `json:"meta"`
}

// VariablesMeta contains every local variable and variable collection of a file,
// keyed by id. The API returns both as JSON objects; the key order of those
// objects is kept in VariableOrder and CollectionOrder so callers can enumerate
// them the way the file does.
type VariablesMeta struct {
	Variables           map[string]Variable           `json:"variables"`
	VariableCollections map[string]VariableCollection `json:"variableCollections"`

	VariableOrder   []string `json:"-"`
	CollectionOrder []string `json:"-"`
}

// UnmarshalJSON decodes both maps and records their key order.
func (m *VariablesMeta) UnmarshalJSON(data []byte) error {
	var raw struct {
		Variables           json.RawMessage `json:"variables"`
		VariableCollections json.RawMessage `json:"variableCollections"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if m.VariableOrder, err = objectKeys(raw.Variables); err != nil {
		return fmt.Errorf("variables: %w", err)
	}
	if m.CollectionOrder, err = objectKeys(raw.VariableCollections); err != nil {
		return fmt.Errorf("variableCollections: %w", err)
	}

	m.Variables = nil
	m.VariableCollections = nil
	if len(m.VariableOrder) > 0 {
		if err := json.Unmarshal(raw.Variables, &m.Variables); err != nil {
			return fmt.Errorf("variables: %w", err)
		}
	}
	if len(m.CollectionOrder) > 0 {
		if err := json.Unmarshal(raw.VariableCollections, &m.VariableCollections); err != nil {
			return fmt.Errorf("variableCollections: %w", err)
		}
	}

	return nil
}

// objectKeys returns the keys of a JSON object in document order.
// Missing or null input yields no keys.
func objectKeys(data json.RawMessage) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}

	return keys, nil
}

// Variable is a single local variable as returned by the Figma API.
// ValuesByMode maps a mode id to either a direct value (color object, number,
// boolean, string) or a VARIABLE_ALIAS object; it is kept raw and decoded by
// the variables package.
type Variable struct {
	ID                   string                     `json:"id"`
	Name                 string                     `json:"name"`
	Key                  string                     `json:"key"`
	VariableCollectionID string                     `json:"variableCollectionId"`
	ResolvedType         string                     `json:"resolvedType"`
	ValuesByMode         map[string]json.RawMessage `json:"valuesByMode"`
	Remote               bool                       `json:"remote"`
	Description          string                     `json:"description"`
	HiddenFromPublishing bool                       `json:"hiddenFromPublishing"`
	Scopes               []string                   `json:"scopes,omitempty"`
	DeletedButReferenced bool                       `json:"deletedButReferenced,omitempty"`
}

// VariableCollection is a grouping of variables that share a set of modes.
type VariableCollection struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Key                  string   `json:"key"`
	Modes                []Mode   `json:"modes"`
	DefaultModeID        string   `json:"defaultModeId"`
	Remote               bool     `json:"remote"`
	HiddenFromPublishing bool     `json:"hiddenFromPublishing"`
	VariableIDs          []string `json:"variableIds"`
}

// Mode is one column of values in a variable collection.
type Mode struct {
	ModeID string `json:"modeId"`
	Name   string `json:"name"`
}
