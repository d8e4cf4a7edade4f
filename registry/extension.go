package registry

import (
	_ "embed"
	"encoding/json"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Sopitive/forgebridge/errors"
)

//go:embed extension_schema.json
var extensionSchemaJSON string

var (
	extSchemaOnce sync.Once
	extSchema     *jsonschema.Schema
)

func extensionSchema() *jsonschema.Schema {
	extSchemaOnce.Do(func() {
		s, err := jsonschema.CompileString("extension_schema.json", extensionSchemaJSON)
		if err != nil {
			panic("registry: embedded extension schema is invalid: " + err.Error())
		}
		extSchema = s
	})
	return extSchema
}

// Clone returns an independent copy, typically used to layer extensions on
// top of the shared builtin catalog without mutating it.
func (r *Registry) Clone() *Registry {
	entries := make([]Entry, 0, len(r.byName))
	for name, t := range r.byName {
		entries = append(entries, Entry{Name: name, Top: t.Top, Sub: t.Sub, Pre: t.Pre})
	}
	return New(entries)
}

// LoadExtension merges a user extension document into the registry. The
// document is JSON of the form {"types":[{"name","top","sub","pre"},...]}
// and is validated against the embedded schema before any entry is applied.
// Extensions may add new names or override builtin triples. Returns the
// number of entries merged.
func (r *Registry) LoadExtension(data []byte) (int, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "extension is not valid JSON")
	}
	if err := extensionSchema().Validate(raw); err != nil {
		return 0, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "extension failed schema validation")
	}

	var doc struct {
		Types []Entry `json:"types"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "extension decode")
	}

	r.add(doc.Types)
	return len(doc.Types), nil
}

// LoadExtensionFile reads and merges an extension document from disk.
func (r *Registry) LoadExtensionFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, "read extension file")
	}
	return r.LoadExtension(data)
}
