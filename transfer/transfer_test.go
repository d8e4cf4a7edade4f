package transfer

import (
	"bytes"
	goerrors "errors"
	"fmt"
	"testing"

	forgebridge "github.com/Sopitive/forgebridge"
	"github.com/Sopitive/forgebridge/codec"
	"github.com/Sopitive/forgebridge/errors"
	"github.com/Sopitive/forgebridge/labels"
)

// fakeProcess backs the slot array and the label blob with one byte slice,
// addressed the way the real target lays them out: the blob sits immediately
// below the array base.
type fakeProcess struct {
	mem    []byte
	origin uint64
	base   uint64

	failAddr uint64 // write to this address fails, 0 disables

	closed bool
	totals []int
	finals []int
}

func newFakeProcess() *fakeProcess {
	const origin = 0x140000000
	size := labels.BlobSize + Capacity*codec.Stride
	f := &fakeProcess{
		mem:    make([]byte, size),
		origin: origin,
		base:   origin + labels.BlobOffset,
	}
	// A real target holds the empty-slot template in unused slots, not zero
	// bytes.
	for i := 0; i < Capacity; i++ {
		copy(f.slot(i), codec.EmptySlot())
	}
	return f
}

func (f *fakeProcess) offset(addr uint64, size uint32) (int, error) {
	if addr < f.origin {
		return 0, fmt.Errorf("address %#x below region", addr)
	}
	off := int(addr - f.origin)
	if off+int(size) > len(f.mem) {
		return 0, fmt.Errorf("address %#x+%d beyond region", addr, size)
	}
	return off, nil
}

func (f *fakeProcess) Read(addr uint64, size uint32) ([]byte, error) {
	off, err := f.offset(addr, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, f.mem[off:])
	return out, nil
}

func (f *fakeProcess) Write(addr uint64, data []byte) error {
	if f.failAddr != 0 && addr == f.failAddr {
		return fmt.Errorf("injected write failure at %#x", addr)
	}
	off, err := f.offset(addr, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(f.mem[off:], data)
	return nil
}

func (f *fakeProcess) ArrayBase() uint64 { return f.base }

func (f *fakeProcess) Close() error {
	f.closed = true
	return nil
}

func (f *fakeProcess) SetTotalExported(count int) error {
	f.totals = append(f.totals, count)
	return nil
}

func (f *fakeProcess) FinalizeExport(count int) error {
	f.finals = append(f.finals, count)
	return nil
}

// setLabels seeds the label blob below the array base.
func (f *fakeProcess) setLabels(names ...string) {
	blob := make([]byte, 0, 64)
	for _, n := range names {
		blob = append(blob, n...)
		blob = append(blob, 0)
	}
	copy(f.mem[:labels.BlobSize], make([]byte, labels.BlobSize))
	copy(f.mem, blob)
}

// slot returns the raw bytes of slot i.
func (f *fakeProcess) slot(i int) []byte {
	off := labels.BlobSize + i*codec.Stride
	return f.mem[off : off+codec.Stride]
}

type fakeProvider struct {
	proc    *fakeProcess
	openErr error
	opens   int
}

func (p *fakeProvider) Open(process string) (forgebridge.Process, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.opens++
	p.proc.closed = false
	return p.proc, nil
}

func newTestBridge(t *testing.T) (*Bridge, *fakeProcess) {
	t.Helper()
	proc := newFakeProcess()
	proc.setLabels("alpha_site", "beta_site", "power_core")
	b := New(&fakeProvider{proc: proc}, "game.exe")
	return b, proc
}

func mustRecord(t *testing.T, b *Bridge, typeName string) codec.Record {
	t.Helper()
	r, err := b.NewRecord(typeName)
	if err != nil {
		t.Fatalf("NewRecord(%q): %v", typeName, err)
	}
	return r
}

func TestExportChainPattern(t *testing.T) {
	b, proc := newTestBridge(t)

	recs := []codec.Record{
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Respawn Point"),
	}
	recs[1].Position = codec.Vec3{X: 10, Y: 20, Z: 30}

	res, err := b.Export(recs)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Written != 3 || res.Skipped != 0 {
		t.Fatalf("result = %+v, want 3 written 0 skipped", res)
	}

	// Chain flags: more, more, last.
	for i, want := range []bool{true, true, false} {
		if got := codec.HasMore(proc.slot(i)); got != want {
			t.Errorf("slot %d chain = %v, want %v", i, got, want)
		}
		if codec.IsEmpty(proc.slot(i)) {
			t.Errorf("slot %d is empty, want populated", i)
		}
	}

	// Every remaining slot must be the empty template with chain clear.
	for i := 3; i < Capacity; i++ {
		if !codec.IsEmpty(proc.slot(i)) {
			t.Fatalf("slot %d not overwritten with empty template", i)
		}
		if codec.HasMore(proc.slot(i)) {
			t.Fatalf("slot %d empty but chain set", i)
		}
	}

	if len(proc.totals) != 1 || proc.totals[0] != 3 {
		t.Errorf("SetTotalExported calls = %v, want [3]", proc.totals)
	}
	if len(proc.finals) != 1 || proc.finals[0] != 3 {
		t.Errorf("FinalizeExport calls = %v, want [3]", proc.finals)
	}
	if !proc.closed {
		t.Error("process handle not closed after export")
	}
}

func TestExportSingleRecordChainClear(t *testing.T) {
	b, proc := newTestBridge(t)

	if _, err := b.Export([]codec.Record{mustRecord(t, b, "Block, 5x5, Flat")}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if codec.HasMore(proc.slot(0)) {
		t.Error("single record must have chain flag clear")
	}
}

func TestExportSkipsUnknownType(t *testing.T) {
	b, proc := newTestBridge(t)

	bad := codec.Record{TypeName: "Not A Real Thing"}
	recs := []codec.Record{
		mustRecord(t, b, "Block, 5x5, Flat"),
		bad,
		mustRecord(t, b, "Respawn Point"),
	}

	res, err := b.Export(recs)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Written != 2 || res.Skipped != 1 {
		t.Fatalf("result = %+v, want 2 written 1 skipped", res)
	}
	if codec.HasMore(proc.slot(1)) {
		t.Error("last published slot must have chain flag clear")
	}
	if !codec.IsEmpty(proc.slot(2)) {
		t.Error("slot after last record must be empty")
	}
}

func TestExportZeroBaseAborts(t *testing.T) {
	b, proc := newTestBridge(t)
	proc.base = 0

	before := make([]byte, len(proc.mem))
	copy(before, proc.mem)

	_, err := b.Export([]codec.Record{mustRecord(t, b, "Block, 5x5, Flat")})
	if !goerrors.Is(err, errors.PointerUnresolved()) {
		t.Fatalf("err = %v, want pointer unresolved", err)
	}

	// Nothing may have been written.
	if !bytes.Equal(proc.mem, before) {
		t.Fatal("memory touched despite zero base")
	}
}

func TestExportWriteFailureCarriesSlot(t *testing.T) {
	b, proc := newTestBridge(t)

	const failSlot = 2
	proc.failAddr = proc.base + failSlot*codec.Stride

	recs := []codec.Record{
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Block, 5x5, Flat"),
	}

	_, err := b.Export(recs)
	if err == nil {
		t.Fatal("Export succeeded despite injected write failure")
	}

	var te *errors.Error
	if !goerrors.As(err, &te) {
		t.Fatalf("err %T, want *errors.Error", err)
	}
	if te.Kind != errors.KindWriteFailed {
		t.Errorf("kind = %s, want %s", te.Kind, errors.KindWriteFailed)
	}
	if te.Slot != failSlot {
		t.Errorf("slot = %d, want %d", te.Slot, failSlot)
	}
	if te.Addr != proc.failAddr {
		t.Errorf("addr = %#x, want %#x", te.Addr, proc.failAddr)
	}

	// Slots before the failure were published; slot 3 was never reached.
	if codec.IsEmpty(proc.slot(0)) || codec.IsEmpty(proc.slot(1)) {
		t.Error("slots before the failure should be published")
	}
	if !codec.IsEmpty(proc.slot(3)) {
		t.Error("slot after the failure should be untouched")
	}
}

func TestExportTruncatesBeyondCapacity(t *testing.T) {
	b, proc := newTestBridge(t)

	recs := make([]codec.Record, Capacity+2)
	for i := range recs {
		recs[i] = mustRecord(t, b, "Block, 5x5, Flat")
	}

	res, err := b.Export(recs)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Written != Capacity || res.Skipped != 2 {
		t.Fatalf("result = %+v, want %d written 2 skipped", res, Capacity)
	}
	if codec.IsEmpty(proc.slot(Capacity - 1)) {
		t.Error("last slot should hold a record")
	}
	if codec.HasMore(proc.slot(Capacity - 1)) {
		t.Error("last slot must have chain flag clear")
	}
}

func TestImportRoundTrip(t *testing.T) {
	b, _ := newTestBridge(t)

	want := []codec.Record{
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Respawn Point"),
	}
	want[0].Position = codec.Vec3{X: 1.5, Y: -2, Z: 64}
	want[0].Labels[0] = "beta_site"
	want[1].Team = 3

	// Label names encode to indices against the live table.
	if _, err := b.RefreshLabels(); err != nil {
		t.Fatalf("RefreshLabels: %v", err)
	}
	if _, err := b.Export(want); err != nil {
		t.Fatalf("Export: %v", err)
	}

	got, err := b.Import(0)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("imported %d records, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].Index != i {
			t.Errorf("record %d at slot %d, want %d", i, got[i].Index, i)
		}
		if got[i].Record != want[i] {
			t.Errorf("record %d mismatch:\n got %+v\nwant %+v", i, got[i].Record, want[i])
		}
	}
}

func TestImportEmptyArray(t *testing.T) {
	b, _ := newTestBridge(t)

	got, err := b.Import(0)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("imported %d records from empty array", len(got))
	}
}

func TestImportStopsAtChainEnd(t *testing.T) {
	b, proc := newTestBridge(t)

	recs := []codec.Record{
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Block, 5x5, Flat"),
	}
	if _, err := b.Export(recs); err != nil {
		t.Fatalf("Export: %v", err)
	}

	// Plant a stale populated entry past the chain end, as a longer foreign
	// session would leave behind without the full-array publish.
	stale := mustRecord(t, b, "Respawn Point")
	entry, err := codec.New(b.Registry(), b.Labels()).Encode(&stale)
	if err != nil {
		t.Fatalf("Encode stale: %v", err)
	}
	copy(proc.slot(5), entry)

	got, err := b.Import(0)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("imported %d records, want 2 (stale slot must be ignored)", len(got))
	}
}

func TestImportSkipsStaleGap(t *testing.T) {
	b, proc := newTestBridge(t)

	recs := []codec.Record{
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Respawn Point"),
	}
	if _, err := b.Export(recs); err != nil {
		t.Fatalf("Export: %v", err)
	}

	// Blank slot 1 but leave its chain flag announcing a follower. A scan
	// must skip the gap and still reach slot 2.
	empty := codec.EmptySlot()
	codec.SetChainFlag(empty, true)
	copy(proc.slot(1), empty)

	got, err := b.Import(0)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("imported %d records, want 2", len(got))
	}
	if got[0].Index != 0 || got[1].Index != 2 {
		t.Errorf("slot indices = %d, %d, want 0, 2", got[0].Index, got[1].Index)
	}
}

func TestImportLimit(t *testing.T) {
	b, _ := newTestBridge(t)

	recs := make([]codec.Record, 5)
	for i := range recs {
		recs[i] = mustRecord(t, b, "Block, 5x5, Flat")
	}
	if _, err := b.Export(recs); err != nil {
		t.Fatalf("Export: %v", err)
	}

	got, err := b.Import(2)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("imported %d records with limit 2", len(got))
	}
}

func TestImportLimitBoundsSlots(t *testing.T) {
	b, proc := newTestBridge(t)

	recs := []codec.Record{
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Block, 5x5, Flat"),
		mustRecord(t, b, "Respawn Point"),
	}
	if _, err := b.Export(recs); err != nil {
		t.Fatalf("Export: %v", err)
	}

	// Blank slot 1 but keep its chain flag. The limit bounds the slots
	// scanned, so slot 2 is out of reach even though only one record was
	// collected.
	empty := codec.EmptySlot()
	codec.SetChainFlag(empty, true)
	copy(proc.slot(1), empty)

	got, err := b.Import(2)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 1 || got[0].Index != 0 {
		t.Fatalf("imported %v, want only slot 0", got)
	}
}

func TestImportZeroBase(t *testing.T) {
	b, proc := newTestBridge(t)
	proc.base = 0

	if _, err := b.Import(0); !goerrors.Is(err, errors.PointerUnresolved()) {
		t.Fatalf("err = %v, want pointer unresolved", err)
	}
}

func TestRefreshLabels(t *testing.T) {
	b, proc := newTestBridge(t)

	got, err := b.RefreshLabels()
	if err != nil {
		t.Fatalf("RefreshLabels: %v", err)
	}
	want := []labels.Entry{
		{Name: "alpha_site", Index: 0},
		{Name: "beta_site", Index: 1},
		{Name: "power_core", Index: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d labels, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("label %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// The game rebuilds the blob; a refresh reassigns indices but names keep
	// resolving.
	proc.setLabels("power_core", "alpha_site")
	if _, err := b.RefreshLabels(); err != nil {
		t.Fatalf("second RefreshLabels: %v", err)
	}
	if idx := b.Labels().IndexOf("power_core"); idx != 0 {
		t.Errorf("power_core index after refresh = %d, want 0", idx)
	}
	if idx := b.Labels().IndexOf("beta_site"); idx != labels.None {
		t.Errorf("dropped label index = %d, want none", idx)
	}
}

func TestRefreshLabelsEmptyBlob(t *testing.T) {
	b, proc := newTestBridge(t)
	proc.setLabels()

	_, err := b.RefreshLabels()
	if err == nil {
		t.Fatal("RefreshLabels accepted a blob with no labels")
	}
	var te *errors.Error
	if !goerrors.As(err, &te) || te.Kind != errors.KindLabelParseEmpty {
		t.Fatalf("err = %v, want label parse empty", err)
	}
}

func TestImportRefreshesLabelsFirst(t *testing.T) {
	b, proc := newTestBridge(t)

	recs := []codec.Record{mustRecord(t, b, "Block, 5x5, Flat")}
	recs[0].Labels[0] = "power_core"
	if _, err := b.RefreshLabels(); err != nil {
		t.Fatalf("RefreshLabels: %v", err)
	}
	if _, err := b.Export(recs); err != nil {
		t.Fatalf("Export: %v", err)
	}

	// A fresh bridge over the same memory has never seen the label table;
	// Import must pick it up before decoding.
	b2 := New(&fakeProvider{proc: proc}, "game.exe")
	got, err := b2.Import(0)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("imported %d records, want 1", len(got))
	}
	if got[0].Record.Labels[0] != "power_core" {
		t.Errorf("label = %q, want %q", got[0].Record.Labels[0], "power_core")
	}
}

func TestReexportEmitsFreshLabelIndex(t *testing.T) {
	b, proc := newTestBridge(t)

	recs := []codec.Record{mustRecord(t, b, "Block, 5x5, Flat")}
	recs[0].Labels[0] = "power_core"

	if _, err := b.RefreshLabels(); err != nil {
		t.Fatalf("RefreshLabels: %v", err)
	}
	if _, err := b.Export(recs); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := proc.slot(0)[0x44]; got != 2 {
		t.Fatalf("label byte = %d, want 2 before reshuffle", got)
	}

	// The game rebuilds the blob and power_core lands on a new index. The
	// record stores the name, so a re-export must emit the fresh index.
	proc.setLabels("power_core", "alpha_site")
	if _, err := b.RefreshLabels(); err != nil {
		t.Fatalf("second RefreshLabels: %v", err)
	}
	if _, err := b.Export(recs); err != nil {
		t.Fatalf("second Export: %v", err)
	}
	if got := proc.slot(0)[0x44]; got != 0 {
		t.Errorf("label byte = %d, want 0 after reshuffle", got)
	}
}

func TestOpenFailure(t *testing.T) {
	proc := newFakeProcess()
	b := New(&fakeProvider{proc: proc, openErr: fmt.Errorf("no such process")}, "game.exe")

	_, err := b.Import(0)
	var te *errors.Error
	if !goerrors.As(err, &te) || te.Kind != errors.KindProcessNotFound {
		t.Fatalf("err = %v, want process not found", err)
	}
}

func TestNewRecordUnknownType(t *testing.T) {
	b, _ := newTestBridge(t)

	if _, err := b.NewRecord("Not A Real Thing"); err == nil {
		t.Fatal("NewRecord accepted an unknown type name")
	}
}
