// Package registry maps human-meaningful object type names to and from the
// raw (top, sub, pre) identity triple stored in entry bytes.
//
// Forward resolution (name → triple) is a direct lookup. Reverse resolution
// (triple → name) applies a three-tier fallback: exact triple match, then a
// (top, sub) pair match picking the lowest pre byte, then unresolved. An
// unresolved triple is preserved verbatim on the record so re-exporting an
// object the registry does not know never mutates its raw identity.
package registry

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultTypeName is the editor's fallback kind for newly staged objects.
const DefaultTypeName = "Block, 5x5, Flat"

//go:embed builtin.yaml
var builtinYAML []byte

// Triple is the raw object identity: top type id, sub type id, and the
// pre-flags byte that disambiguates behavioral sub-variants.
type Triple struct {
	Top uint8
	Sub uint8
	Pre uint8
}

// Entry is one catalog row.
type Entry struct {
	Name string `yaml:"name" json:"name"`
	Top  uint8  `yaml:"top" json:"top"`
	Sub  uint8  `yaml:"sub" json:"sub"`
	Pre  uint8  `yaml:"pre" json:"pre"`
}

type pair struct {
	top uint8
	sub uint8
}

type candidate struct {
	name string
	pre  uint8
}

// Registry holds the bidirectional type mapping.
type Registry struct {
	byName map[string]Triple
	exact  map[Triple]string
	byPair map[pair][]candidate
}

// New builds a registry from catalog entries. Later entries win name
// collisions and exact-triple collisions, matching catalog file order.
func New(entries []Entry) *Registry {
	r := &Registry{
		byName: make(map[string]Triple, len(entries)),
		exact:  make(map[Triple]string, len(entries)),
		byPair: make(map[pair][]candidate),
	}
	r.add(entries)
	return r
}

func (r *Registry) add(entries []Entry) {
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		t := Triple{Top: e.Top, Sub: e.Sub, Pre: e.Pre}
		if old, ok := r.byName[name]; ok {
			r.evict(name, old)
		}
		r.byName[name] = t
		r.exact[t] = name
		p := pair{top: e.Top, sub: e.Sub}
		r.byPair[p] = append(r.byPair[p], candidate{name: name, pre: e.Pre})
	}
	for p := range r.byPair {
		cands := r.byPair[p]
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].pre != cands[j].pre {
				return cands[i].pre < cands[j].pre
			}
			return cands[i].name < cands[j].name
		})
	}
}

// evict removes the reverse-resolution rows a name holds under its previous
// triple, so a re-mapped name cannot still be resolved from the old bytes
// and a re-added name never duplicates its pair candidate.
func (r *Registry) evict(name string, old Triple) {
	if r.exact[old] == name {
		delete(r.exact, old)
	}
	p := pair{top: old.Top, sub: old.Sub}
	cands := r.byPair[p][:0]
	for _, c := range r.byPair[p] {
		if c.name != name {
			cands = append(cands, c)
		}
	}
	if len(cands) == 0 {
		delete(r.byPair, p)
	} else {
		r.byPair[p] = cands
	}
}

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the registry built from the embedded catalog. The catalog
// is parsed once; a malformed embedded file is a build defect and panics.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		var doc struct {
			Types []Entry `yaml:"types"`
		}
		if err := yaml.Unmarshal(builtinYAML, &doc); err != nil {
			panic("registry: embedded catalog is invalid: " + err.Error())
		}
		builtin = New(doc.Types)
	})
	return builtin
}

// Default returns the staging fallback type name. A catalog without a
// DefaultTypeName row falls back to the first name in sorted order, so an
// edited or trimmed catalog still yields a stageable kind.
func (r *Registry) Default() string {
	if _, ok := r.byName[DefaultTypeName]; ok {
		return DefaultTypeName
	}
	if names := r.Names(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// Lookup resolves a type name to its triple.
func (r *Registry) Lookup(name string) (Triple, bool) {
	t, ok := r.byName[strings.TrimSpace(name)]
	return t, ok
}

// Resolve maps a raw triple back to a type name.
//
// Tier 1 is an exact (top, sub, pre) match. Tier 2 matches (top, sub) only,
// choosing the candidate with the lowest pre byte, a documented best-guess
// policy for pre bytes the catalog has not seen, not a correctness guarantee.
// Tier 3 returns ok=false: the object is unresolved and its raw triple must
// be retained by the caller.
func (r *Registry) Resolve(t Triple) (string, bool) {
	if name, ok := r.exact[t]; ok {
		return name, true
	}
	if cands := r.byPair[pair{top: t.Top, sub: t.Sub}]; len(cands) > 0 {
		return cands[0].name, true
	}
	return "", false
}

// Names returns all known type names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of known type names.
func (r *Registry) Len() int {
	return len(r.byName)
}
