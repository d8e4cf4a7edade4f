package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseOpen    Phase = "open"    // process attach
	PhaseResolve Phase = "resolve" // pointer-chain / name resolution
	PhaseRead    Phase = "read"    // target memory reads
	PhaseWrite   Phase = "write"   // target memory writes
	PhaseParse   Phase = "parse"   // label blob / catalog parsing
	PhaseEncode  Phase = "encode"  // record to entry bytes
	PhaseDecode  Phase = "decode"  // entry bytes to record
	PhaseStash   Phase = "stash"   // local snapshot store
)

// Kind categorizes the error
type Kind string

const (
	KindProcessNotFound   Kind = "process_not_found"
	KindPointerUnresolved Kind = "pointer_unresolved"
	KindShortRead         Kind = "short_read"
	KindWriteFailed       Kind = "write_failed"
	KindLabelBlob         Kind = "label_blob"
	KindLabelParseEmpty   Kind = "label_parse_empty"
	KindUnresolvedType    Kind = "unresolved_type"
	KindCapabilityMissing Kind = "capability_missing"
	KindInvalidData       Kind = "invalid_data"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindNotFound          Kind = "not_found"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Slot   int    // slot index, -1 when not applicable
	Addr   uint64 // target address, 0 when not applicable
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Slot >= 0 {
		fmt.Fprintf(&b, " at slot %d", e.Slot)
	}
	if e.Addr != 0 {
		fmt.Fprintf(&b, " addr=0x%X", e.Addr)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
			Slot:  -1,
		},
	}
}

// Slot sets the slot index
func (b *Builder) Slot(i int) *Builder {
	b.err.Slot = i
	return b
}

// Addr sets the target address
func (b *Builder) Addr(a uint64) *Builder {
	b.err.Addr = a
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ProcessNotFound creates a process attach failure error
func ProcessNotFound(process string, cause error) *Error {
	return &Error{
		Phase:  PhaseOpen,
		Kind:   KindProcessNotFound,
		Detail: fmt.Sprintf("open process %q", process),
		Cause:  cause,
		Slot:   -1,
	}
}

// PointerUnresolved creates an error for a zero array base address
func PointerUnresolved() *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindPointerUnresolved,
		Detail: "array base resolved to 0 (pointer chain failed)",
		Slot:   -1,
	}
}

// ShortRead creates a read failure error
func ShortRead(addr uint64, want uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindShortRead,
		Addr:   addr,
		Detail: fmt.Sprintf("failed to read %d bytes", want),
		Cause:  cause,
		Slot:   -1,
	}
}

// WriteFailed creates a slot-indexed write failure error
func WriteFailed(slot int, addr uint64, cause error) *Error {
	return &Error{
		Phase: PhaseWrite,
		Kind:  KindWriteFailed,
		Slot:  slot,
		Addr:  addr,
		Cause: cause,
	}
}

// LabelBlobRead creates a label blob read failure error
func LabelBlobRead(addr uint64, cause error) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindLabelBlob,
		Addr:   addr,
		Detail: "failed to read label blob",
		Cause:  cause,
		Slot:   -1,
	}
}

// LabelParseEmpty creates an error for a blob that yields zero labels
func LabelParseEmpty(addr uint64) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindLabelParseEmpty,
		Addr:   addr,
		Detail: "parsed 0 labels from blob",
		Slot:   -1,
	}
}

// UnresolvedType creates a non-fatal unknown-triple error
func UnresolvedType(top, sub, pre uint8) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnresolvedType,
		Detail: fmt.Sprintf("no registry entry for triple (%#02x, %#02x, %#02x)", top, sub, pre),
		Slot:   -1,
	}
}

// CapabilityMissing creates a degraded-capability error
func CapabilityMissing(what string) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindCapabilityMissing,
		Detail: fmt.Sprintf("provider does not implement %s", what),
		Slot:   -1,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
		Slot:   -1,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Slot:   -1,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Slot:   -1,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
		Slot:   -1,
	}
}
