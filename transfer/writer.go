package transfer

import (
	"go.uber.org/zap"

	forgebridge "github.com/Sopitive/forgebridge"
	"github.com/Sopitive/forgebridge/codec"
	"github.com/Sopitive/forgebridge/errors"
)

// ExportResult reports what a publish did.
type ExportResult struct {
	// Written is the number of records placed into slots.
	Written int
	// Skipped counts records that could not be encoded (unknown type name)
	// and were left out of the publish.
	Skipped int
}

// Export publishes records into the slot array. All Capacity slots are
// written every time: the first len(records) slots carry the encoded entries
// chained together, and every remaining slot is overwritten with the empty
// template so entries from a longer previous session cannot leak into this
// one.
//
// Records that fail to encode are skipped with a warning and counted, not
// fatal, as are records beyond Capacity. A failed memory write aborts
// immediately with the slot and address; the array is in a partially
// published state and the caller should retry the whole export.
func (b *Bridge) Export(records []codec.Record) (ExportResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var res ExportResult
	if len(records) > Capacity {
		res.Skipped = len(records) - Capacity
		b.log.Warn("truncating records beyond array capacity",
			zap.Int("records", len(records)),
			zap.Int("capacity", Capacity))
		records = records[:Capacity]
	}

	entries := make([][]byte, 0, len(records))
	for i := range records {
		entry, err := b.codec.Encode(&records[i])
		if err != nil {
			res.Skipped++
			b.log.Warn("skipping record with unknown type",
				zap.Int("record", i),
				zap.String("type", records[i].TypeName),
				zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	// Chain pattern: every populated slot except the last announces a
	// follower, the last and all empties do not.
	for i, entry := range entries {
		codec.SetChainFlag(entry, i < len(entries)-1)
	}

	err := b.withProcess(func(p forgebridge.Process, base uint64) error {
		for i := 0; i < Capacity; i++ {
			var entry []byte
			if i < len(entries) {
				entry = entries[i]
			} else {
				entry = codec.EmptySlot()
			}

			addr := base + uint64(i)*codec.Stride
			if werr := p.Write(addr, entry); werr != nil {
				return errors.WriteFailed(i, addr, werr)
			}
		}

		b.pokeTarget(p, len(entries))
		return nil
	})
	if err != nil {
		return res, err
	}

	res.Written = len(entries)
	b.log.Info("export complete",
		zap.Int("written", res.Written),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// pokeTarget exercises the provider's optional post-publish capabilities.
// Both are best effort: a provider without them, or one whose pokes fail,
// leaves the published entries intact and only costs the target's own
// bookkeeping.
func (b *Bridge) pokeTarget(p forgebridge.Process, count int) {
	if ts, ok := p.(forgebridge.TotalSetter); ok {
		if err := ts.SetTotalExported(count); err != nil {
			b.log.Warn("set exported total", zap.Int("count", count), zap.Error(err))
		}
	} else {
		b.log.Debug("provider cannot set exported total")
	}

	if fin, ok := p.(forgebridge.Finalizer); ok {
		if err := fin.FinalizeExport(count); err != nil {
			b.log.Warn("finalize export", zap.Int("count", count), zap.Error(err))
		}
	} else {
		b.log.Debug("provider cannot finalize export")
	}
}
