// Package labels parses and resolves the target's label table.
//
// The live table is a blob of NUL-separated strings sitting immediately below
// the object array in target memory. The game rebuilds it wholesale, so
// index-to-name assignments are NOT stable across refreshes. Editor-side
// records therefore persist the label NAME; the index is an ephemeral lookup
// against the current snapshot, recomputed on every refresh.
package labels

import "strings"

const (
	// BlobSize is the exact byte size of the label blob. It sits at
	// arrayBase - BlobOffset in target memory.
	BlobSize = 0x120A

	// BlobOffset is the distance of the blob below the object array base.
	BlobOffset = 0x120A

	// None is the reserved "no label" index. It is never part of a parsed
	// table and must stay representable regardless of table contents.
	None uint8 = 0xFF
)

// Entry pairs a snapshot index with a label name.
type Entry struct {
	Name  string
	Index uint8
}

// Table is one immutable snapshot of the label table. A refresh produces a
// whole new Table; consumers re-resolve names against it.
type Table struct {
	entries []Entry
	byName  map[string]uint8 // lower-cased name -> index
}

// Empty returns a table with no labels. Lookups yield None / "".
func Empty() *Table {
	return &Table{byName: map[string]uint8{}}
}

// Parse rebuilds a snapshot from a raw blob. Fragments are split on NUL,
// stripped of non-ASCII bytes, trimmed, and kept only when at least 85% of
// their characters (minimum 3) are printable excluding CR and TAB. Duplicates
// keep first-occurrence order; indices are assigned 0,1,2,... in that order.
func Parse(blob []byte) *Table {
	t := Empty()
	seen := make(map[string]bool)

	for _, frag := range strings.Split(string(blob), "\x00") {
		if frag == "" {
			continue
		}
		s := strings.TrimSpace(dropNonASCII(frag))
		if len(s) < 2 || !mostlyPrintable(s) {
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true

		// Indices are stored as a byte in entries; 0xFF is reserved.
		if len(t.entries) >= int(None) {
			break
		}
		idx := uint8(len(t.entries))
		t.entries = append(t.entries, Entry{Name: s, Index: idx})
		key := strings.ToLower(s)
		if _, dup := t.byName[key]; !dup {
			t.byName[key] = idx
		}
	}
	return t
}

func dropNonASCII(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] < 0x80 {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func mostlyPrintable(s string) bool {
	if s == "" {
		return false
	}
	ok := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 0x20 && c <= 0x7E) || c == '\n' || c == '\v' || c == '\f' {
			ok++
		}
	}
	min := len(s) * 85 / 100
	if min < 3 {
		min = 3
	}
	return ok >= min
}

// Entries returns the snapshot in index order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of labels in the snapshot.
func (t *Table) Len() int {
	return len(t.entries)
}

// IndexOf resolves a name to its current index by case-insensitive match.
// Empty or unknown names resolve to None; a name that no longer exists
// degrades to "no label", not an error.
func (t *Table) IndexOf(name string) uint8 {
	nm := strings.TrimSpace(name)
	if nm == "" {
		return None
	}
	if idx, ok := t.byName[strings.ToLower(nm)]; ok {
		return idx
	}
	return None
}

// NameAt resolves an index to its current name, or "" for None or any index
// outside the snapshot.
func (t *Table) NameAt(idx uint8) string {
	if idx == None || int(idx) >= len(t.entries) {
		return ""
	}
	return t.entries[idx].Name
}
