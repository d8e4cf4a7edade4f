package forgebridge

// Provider opens handles into a target process's memory. Implementations wrap
// whatever native mechanism is available (a helper DLL, /proc/pid/mem, a fake
// in-process buffer for tests).
type Provider interface {
	// Open attaches to the named process image. It fails if no such process
	// is running or the handle cannot be acquired.
	Open(process string) (Process, error)
}

// Process is an open handle into the target process. Calls are blocking; a
// failed or blocked call returns an error rather than hanging, per the
// provider's contract. Exactly one Process should be open at a time.
type Process interface {
	// Read returns exactly size bytes at addr. Obtaining fewer bytes is an
	// error.
	Read(addr uint64, size uint32) ([]byte, error)

	// Write stores data at addr.
	Write(addr uint64, data []byte) error

	// ArrayBase walks the target's pointer chain and returns the current
	// base address of the object slot array. Zero means the chain could not
	// be resolved; callers must abort before touching memory.
	ArrayBase() uint64

	Close() error
}

// TotalSetter is an optional Process capability: after a publish, record how
// many live entries were exported so the target's own bookkeeping matches.
// Detected by type assertion; absence degrades gracefully.
type TotalSetter interface {
	SetTotalExported(count int) error
}

// Finalizer is an optional Process capability: poke the target back into its
// object-editing mode after a publish. Best effort; the target's semantics
// beyond a boolean success flag are undocumented.
type Finalizer interface {
	FinalizeExport(count int) error
}
