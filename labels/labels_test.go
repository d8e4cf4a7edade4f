package labels

import (
	"bytes"
	"testing"
)

func blobOf(parts ...string) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
		out = append(out, 0)
	}
	return out
}

func TestParse_Basic(t *testing.T) {
	tbl := Parse(blobOf("Scale", "teleporter", "oddball"))

	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
	want := []Entry{
		{Name: "Scale", Index: 0},
		{Name: "teleporter", Index: 1},
		{Name: "oddball", Index: 2},
	}
	for i, e := range tbl.Entries() {
		if e != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestParse_DropsJunk(t *testing.T) {
	blob := bytes.Join([][]byte{
		[]byte("Scale"),
		{},                    // empty fragment
		[]byte("x"),           // too short
		{0x01, 0x02, 0x03, 0x04, 0x05}, // unprintable
		[]byte("  km  "),      // trims below the 3-char floor, dropped
		[]byte("  red  "),     // trims to exactly 3 chars, kept
		[]byte("Scale"),       // duplicate, dropped
		[]byte("hill_marker"),
	}, []byte{0})

	tbl := Parse(blob)
	got := tbl.Entries()
	want := []string{"Scale", "red", "hill_marker"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries (%v), want %d", len(got), got, len(want))
	}
	for i, e := range got {
		if e.Name != want[i] || e.Index != uint8(i) {
			t.Errorf("entry %d = %+v, want {%s %d}", i, e, want[i], i)
		}
	}
}

func TestParse_MostlyPrintableThreshold(t *testing.T) {
	// 1 bad byte out of 8 chars: 7 >= max(3, int(8*0.85)=6), kept.
	kept := "abcdefg\x01"
	// 2 bad bytes out of 8: 6 >= 6 still kept; 3 bad out of 8: 5 < 6 dropped.
	dropped := "abcde\x01\x02\x03"

	tbl := Parse([]byte(kept + "\x00" + dropped + "\x00"))
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (%v)", tbl.Len(), tbl.Entries())
	}
}

func TestParse_NonASCIIStripped(t *testing.T) {
	tbl := Parse([]byte("Sc\xC3\xA9ale\x00"))
	if tbl.Len() != 1 || tbl.Entries()[0].Name != "Scale" {
		t.Fatalf("entries = %v, want [Scale]", tbl.Entries())
	}
}

func TestIndexOf_CaseInsensitive(t *testing.T) {
	tbl := Parse(blobOf("Scale", "KOTH_hill"))

	tests := []struct {
		name string
		want uint8
	}{
		{"Scale", 0},
		{"scale", 0},
		{"SCALE", 0},
		{"koth_hill", 1},
		{"", None},
		{"missing", None},
		{"  Scale  ", 0},
	}
	for _, tt := range tests {
		if got := tbl.IndexOf(tt.name); got != tt.want {
			t.Errorf("IndexOf(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestNameAt(t *testing.T) {
	tbl := Parse(blobOf("Scale"))

	if got := tbl.NameAt(0); got != "Scale" {
		t.Errorf("NameAt(0) = %q", got)
	}
	if got := tbl.NameAt(None); got != "" {
		t.Errorf("NameAt(None) = %q, want empty", got)
	}
	if got := tbl.NameAt(7); got != "" {
		t.Errorf("NameAt(7) = %q, want empty", got)
	}
}

func TestEmpty(t *testing.T) {
	tbl := Empty()
	if tbl.Len() != 0 {
		t.Fatalf("Len = %d", tbl.Len())
	}
	if tbl.IndexOf("anything") != None {
		t.Error("IndexOf on empty table should be None")
	}
	if tbl.NameAt(None) != "" {
		t.Error("NameAt(None) should be empty")
	}
}

func TestParse_IndexReassignment(t *testing.T) {
	// The same name lands on different indices across refreshes; names are
	// the stable identity.
	first := Parse(blobOf("alpha", "Scale"))
	second := Parse(blobOf("Scale", "bravo", "alpha"))

	if first.IndexOf("Scale") != 1 {
		t.Fatalf("first snapshot index = %d, want 1", first.IndexOf("Scale"))
	}
	if second.IndexOf("Scale") != 0 {
		t.Fatalf("second snapshot index = %d, want 0", second.IndexOf("Scale"))
	}
}
