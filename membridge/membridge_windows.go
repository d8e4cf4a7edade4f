//go:build windows

package membridge

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"

	forgebridge "github.com/Sopitive/forgebridge"
	"github.com/Sopitive/forgebridge/errors"
)

// provider lazily binds the helper DLL. Optional exports are resolved per
// call so an older DLL still serves the core read/write path.
type provider struct {
	dll *syscall.LazyDLL

	open     *syscall.LazyProc
	closeh   *syscall.LazyProc
	read     *syscall.LazyProc
	write    *syscall.LazyProc
	force    *syscall.LazyProc
	base     *syscall.LazyProc
	setTotal *syscall.LazyProc
	finalize *syscall.LazyProc
}

// New locates the helper DLL and returns a provider bound to it. Search
// order: an explicit path, the executable's directory, the working
// directory.
func New(path string) (forgebridge.Provider, error) {
	dllPath, err := locate(path)
	if err != nil {
		return nil, err
	}

	dll := syscall.NewLazyDLL(dllPath)
	p := &provider{
		dll:      dll,
		open:     dll.NewProc("mb_open_process_by_name"),
		closeh:   dll.NewProc("mb_close_handle"),
		read:     dll.NewProc("mb_read"),
		write:    dll.NewProc("mb_write"),
		force:    dll.NewProc("mb_write_force"),
		base:     dll.NewProc("mb_get_forge_object_array"),
		setTotal: dll.NewProc("mb_set_forge_object_total_exported"),
		finalize: dll.NewProc("mb_finalize_export_and_enter_forge"),
	}
	if err := p.open.Find(); err != nil {
		return nil, errors.Wrap(errors.PhaseOpen, errors.KindCapabilityMissing, err,
			fmt.Sprintf("%s lacks mb_open_process_by_name", dllPath))
	}
	return p, nil
}

func locate(explicit string) (string, error) {
	var tried []string
	candidates := make([]string, 0, 3)
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), DLLName))
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DLLName))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
		tried = append(tried, c)
	}
	return "", errors.New(errors.PhaseOpen, errors.KindNotFound).
		Detail("%s not found, tried %v", DLLName, tried).Build()
}

func (p *provider) Open(process string) (forgebridge.Process, error) {
	name, err := syscall.BytePtrFromString(process)
	if err != nil {
		return nil, errors.ProcessNotFound(process, err)
	}
	h, _, _ := p.open.Call(uintptr(unsafe.Pointer(name)))
	if h == 0 {
		return nil, errors.ProcessNotFound(process, nil)
	}
	return &handle{p: p, h: h}, nil
}

// handle is one open process attachment.
type handle struct {
	p *provider
	h uintptr
}

func (h *handle) Read(addr uint64, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	ok, _, _ := h.p.read.Call(h.h, uintptr(addr), uintptr(unsafe.Pointer(&buf[0])), uintptr(size))
	if ok == 0 {
		return nil, errors.ShortRead(addr, size, nil)
	}
	return buf, nil
}

func (h *handle) Write(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	// Prefer the forcing variant when the DLL exports it; it flips page
	// protection for regions the target keeps read-only.
	proc := h.p.write
	if h.p.force.Find() == nil {
		proc = h.p.force
	}
	ok, _, _ := proc.Call(h.h, uintptr(addr), uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
	if ok == 0 {
		return errors.New(errors.PhaseWrite, errors.KindWriteFailed).Addr(addr).Build()
	}
	return nil
}

func (h *handle) ArrayBase() uint64 {
	v, _, _ := h.p.base.Call(h.h)
	return uint64(v)
}

func (h *handle) Close() error {
	ok, _, _ := h.p.closeh.Call(h.h)
	if ok == 0 {
		return errors.New(errors.PhaseOpen, errors.KindInvalidData).Detail("close handle").Build()
	}
	return nil
}

// SetTotalExported records the live entry count in the target's bookkeeping.
// Older DLLs lack the export.
func (h *handle) SetTotalExported(count int) error {
	if err := h.p.setTotal.Find(); err != nil {
		return errors.CapabilityMissing("mb_set_forge_object_total_exported")
	}
	ok, _, _ := h.p.setTotal.Call(h.h, uintptr(count))
	if ok == 0 {
		return errors.New(errors.PhaseWrite, errors.KindWriteFailed).Detail("set exported total").Build()
	}
	return nil
}

// FinalizeExport pokes the target back into object-editing mode.
func (h *handle) FinalizeExport(count int) error {
	if err := h.p.finalize.Find(); err != nil {
		return errors.CapabilityMissing("mb_finalize_export_and_enter_forge")
	}
	ok, _, _ := h.p.finalize.Call(h.h, uintptr(count))
	if ok == 0 {
		return errors.New(errors.PhaseWrite, errors.KindWriteFailed).Detail("finalize export").Build()
	}
	return nil
}
