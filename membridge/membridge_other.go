//go:build !windows

package membridge

import (
	forgebridge "github.com/Sopitive/forgebridge"
	"github.com/Sopitive/forgebridge/errors"
)

// New fails on non-Windows platforms; the helper DLL has no counterpart
// there.
func New(path string) (forgebridge.Provider, error) {
	return nil, errors.CapabilityMissing("native memory access on this platform")
}
