// Package errors provides structured error types for the forge bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: slot index, target address,
// and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseWrite, errors.KindWriteFailed).
//		Slot(12).
//		Addr(0x7FF6A0001000).
//		Detail("slot write rejected by provider").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ProcessNotFound("game.exe", cause)
//	err := errors.WriteFailed(12, addr, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
