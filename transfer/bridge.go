package transfer

import (
	"sync"

	"go.uber.org/zap"

	forgebridge "github.com/Sopitive/forgebridge"
	"github.com/Sopitive/forgebridge/codec"
	"github.com/Sopitive/forgebridge/errors"
	"github.com/Sopitive/forgebridge/labels"
	"github.com/Sopitive/forgebridge/registry"
)

// Capacity is the number of slots in the target's object array.
const Capacity = 650

// Slot pairs a decoded record with the array index it was read from.
type Slot struct {
	Index  int
	Record codec.Record
}

// Records strips slot indices from an import result.
func Records(slots []Slot) []codec.Record {
	out := make([]codec.Record, len(slots))
	for i, s := range slots {
		out[i] = s.Record
	}
	return out
}

// Bridge coordinates reads and writes against one target process. It is safe
// for concurrent use; operations serialize because the target tolerates only
// one open handle at a time.
type Bridge struct {
	mu       sync.Mutex
	provider forgebridge.Provider
	process  string
	types    *registry.Registry
	codec    *codec.Codec
	labels   *labels.Table
	log      *zap.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRegistry overrides the builtin type registry.
func WithRegistry(r *registry.Registry) Option {
	return func(b *Bridge) { b.types = r }
}

// WithLogger overrides the library logger for this bridge.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// New builds a bridge over a provider and a process image name.
func New(provider forgebridge.Provider, process string, opts ...Option) *Bridge {
	b := &Bridge{
		provider: provider,
		process:  process,
		types:    registry.Builtin(),
		labels:   labels.Empty(),
		log:      forgebridge.Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.codec = codec.New(b.types, b.labels)
	return b
}

// Labels returns the most recent label table snapshot.
func (b *Bridge) Labels() *labels.Table {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.labels
}

// Registry returns the type registry the bridge resolves against.
func (b *Bridge) Registry() *registry.Registry {
	return b.types
}

// NewRecord stages a fresh record of the named type with editor defaults.
func (b *Bridge) NewRecord(typeName string) (codec.Record, error) {
	r, ok := codec.NewRecord(typeName, b.types)
	if !ok {
		return codec.Record{}, errors.NotFound(errors.PhaseEncode, "object type", typeName)
	}
	return r, nil
}

// withProcess attaches to the target, resolves the array base, runs fn, and
// detaches. The base is re-resolved on every call; a zero base aborts before
// any memory access.
func (b *Bridge) withProcess(fn func(p forgebridge.Process, base uint64) error) error {
	p, err := b.provider.Open(b.process)
	if err != nil {
		return errors.ProcessNotFound(b.process, err)
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			b.log.Warn("close process handle", zap.Error(cerr))
		}
	}()

	base := p.ArrayBase()
	if base == 0 {
		return errors.PointerUnresolved()
	}
	return fn(p, base)
}

// RefreshLabels re-reads the label blob from the target and installs the new
// snapshot. Indices from earlier snapshots are void afterwards; records keep
// resolving by name.
func (b *Bridge) RefreshLabels() ([]labels.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.withProcess(func(p forgebridge.Process, base uint64) error {
		return b.refreshLabelsLocked(p, base)
	})
	if err != nil {
		return nil, err
	}
	return b.labels.Entries(), nil
}

func (b *Bridge) refreshLabelsLocked(p forgebridge.Process, base uint64) error {
	addr := base - labels.BlobOffset
	blob, err := p.Read(addr, labels.BlobSize)
	if err != nil {
		return errors.LabelBlobRead(addr, err)
	}

	tbl := labels.Parse(blob)
	if tbl.Len() == 0 {
		return errors.LabelParseEmpty(addr)
	}

	b.labels = tbl
	b.codec.SetLabels(tbl)
	b.log.Debug("label table refreshed", zap.Int("labels", tbl.Len()))
	return nil
}
