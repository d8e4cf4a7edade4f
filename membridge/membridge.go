// Package membridge provides the native memory provider backed by the
// membridge helper DLL. The DLL owns process attachment, the pointer-chain
// walk to the object array, and the privileged read/write calls; this
// package is a thin binding that adapts it to the Provider contract.
//
// Only Windows targets carry the real binding. On other platforms New
// returns an error and callers fall back to offline work (stash inspection,
// diffs) that needs no live process.
package membridge

// DLLName is the helper library searched for next to the executable and in
// the working directory.
const DLLName = "membridge.dll"
