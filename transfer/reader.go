package transfer

import (
	"go.uber.org/zap"

	forgebridge "github.com/Sopitive/forgebridge"
	"github.com/Sopitive/forgebridge/codec"
	"github.com/Sopitive/forgebridge/errors"
)

// Import scans the slot array and returns the decoded live records in slot
// order. limit bounds the scan to slots [0, limit); zero, negative, or
// over-capacity values scan the whole array.
//
// The label table is refreshed from the same memory first, so decoded label
// names reflect the table the target was using when the entries were placed.
// A failed refresh degrades to the previous snapshot with a warning rather
// than failing the import.
//
// Scan rule: a populated slot is collected, and scanning stops once its
// chain flag is clear. An empty slot ends the scan unless the previous slot
// announced more entries, in which case it is skipped as a stale gap.
func (b *Bridge) Import(limit int) ([]Slot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || limit > Capacity {
		limit = Capacity
	}

	var out []Slot
	err := b.withProcess(func(p forgebridge.Process, base uint64) error {
		if rerr := b.refreshLabelsLocked(p, base); rerr != nil {
			b.log.Warn("label refresh before import failed, using previous snapshot", zap.Error(rerr))
		}

		prevMore := false
		for i := 0; i < limit; i++ {
			addr := base + uint64(i)*codec.Stride
			entry, err := p.Read(addr, codec.Stride)
			if err != nil {
				return errors.ShortRead(addr, codec.Stride, err)
			}

			if codec.IsEmpty(entry) {
				if i == 0 || !prevMore {
					return nil
				}
				// Stale gap left by a foreign writer; the chain says more
				// entries follow.
				prevMore = codec.HasMore(entry)
				continue
			}

			rec, ok, derr := b.codec.Decode(entry)
			if derr != nil {
				return derr
			}
			if ok {
				out = append(out, Slot{Index: i, Record: rec})
			}
			if !codec.HasMore(entry) {
				return nil
			}
			prevMore = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	unresolved := 0
	for _, s := range out {
		if s.Record.Unresolved {
			unresolved++
		}
	}
	b.log.Info("import complete",
		zap.Int("records", len(out)),
		zap.Int("unresolved", unresolved))
	return out, nil
}
