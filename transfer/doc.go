// Package transfer moves object records between the editor and the target
// process using the slot-array protocol.
//
// The target exposes a fixed array of Capacity slots, each one entry wide.
// Liveness is chained: every populated slot except the last carries a "more
// entries follow" flag, and the writer always publishes the full array so no
// stale entry from a previous, longer session can survive a shorter one.
//
// A Bridge is the package's entry point. Each operation attaches to the
// process, re-resolves the array base pointer, does its work, and detaches;
// nothing is cached across calls because the target can relocate the array
// between operations.
package transfer
