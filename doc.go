// Package forgebridge stages placeable forge objects and transfers them, as a
// packed binary slot array, into the live memory of a running game process,
// and reads them back.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	forgebridge/         Root package with the Provider/Process memory contracts
//	├── transfer/        High-level Bridge: Export, Import, RefreshLabels
//	├── codec/           76-byte entry encoding/decoding and basis repair
//	├── registry/        Object type identity: name ⇄ (top, sub, pre) triple
//	├── labels/          Label table snapshots parsed from the live blob
//	├── scale/           Spawn-sequence to scale-multiplier transfer function
//	├── stash/           Local snapshot store (sqlite + zstd) with diffing
//	├── membridge/       Native Provider backed by the helper DLL (Windows)
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Read the live object array:
//
//	bridge := transfer.New(provider, "game.exe", transfer.WithRegistry(registry.Builtin()))
//
//	slots, err := bridge.Import(transfer.Capacity)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range slots {
//	    fmt.Printf("slot %d: %s\n", s.Index, s.Record.TypeName)
//	}
//
// Publish a record set:
//
//	result, err := bridge.Export(records)
//	fmt.Printf("wrote %d, skipped %d\n", result.Written, result.Skipped)
//
// # Memory Model
//
// All access to the target process goes through the Provider contract below.
// The array base address is a live pointer-chain result in the target and may
// relocate between operations (for example across save/load transitions), so
// it is re-resolved on every operation and never cached.
//
// # Thread Safety
//
// The design is single-threaded request/response: one Process handle is open
// at a time, acquired at the start of each high-level operation and released
// on every exit path. Operations must not run concurrently against the same
// Provider.
package forgebridge
