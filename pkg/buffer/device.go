package buffer

import (
	"fmt"
	"sync"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// Device is the logical contract a GPU memory backend must satisfy.
// Real drivers sit behind this interface; the core never talks to a
// graphics API directly.
type Device interface {
	// Allocate reserves size bytes of device memory.
	Allocate(size int) (Allocation, error)
	// Name identifies the backend in logs.
	Name() string
}

// Allocation is one device-side memory block owned by exactly one Buffer.
type Allocation interface {
	// Write copies src into device memory starting at offset.
	Write(offset int, src []byte) error
	// Read copies device memory starting at offset into dst.
	Read(offset int, dst []byte) error
	// Size returns the allocation capacity in bytes.
	Size() int
	// Free releases the block. Using the allocation afterwards is an error.
	Free()
}

// HostDevice is an in-memory Device. It backs the CPU fallback path and
// tests, and enforces an optional byte budget so allocation failure paths
// can be exercised without a GPU.
type HostDevice struct {
	mu     sync.Mutex
	budget int // 0 means unlimited
	used   int
}

// NewHostDevice returns a host-memory device with no byte budget.
func NewHostDevice() *HostDevice {
	return &HostDevice{}
}

// NewHostDeviceWithBudget returns a host-memory device that fails
// allocations once budget bytes are in use.
func NewHostDeviceWithBudget(budget int) *HostDevice {
	return &HostDevice{budget: budget}
}

// Name implements Device.
func (d *HostDevice) Name() string { return "host" }

// Allocate implements Device.
func (d *HostDevice) Allocate(size int) (Allocation, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: allocation size %d", errs.ErrInvalidArgument, size)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.budget > 0 && d.used+size > d.budget {
		return nil, fmt.Errorf("%w: device budget %d bytes, %d in use, requested %d",
			errs.ErrOutOfMemory, d.budget, d.used, size)
	}
	d.used += size

	return &hostAllocation{device: d, mem: make([]byte, size)}, nil
}

// UsedBytes reports the bytes currently allocated.
func (d *HostDevice) UsedBytes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.used
}

type hostAllocation struct {
	device *HostDevice
	mem    []byte
	freed  bool
}

func (a *hostAllocation) Write(offset int, src []byte) error {
	if a.freed {
		return fmt.Errorf("%w: write to freed allocation", errs.ErrInvalidState)
	}
	if offset < 0 || offset+len(src) > len(a.mem) {
		return fmt.Errorf("%w: write [%d,%d) outside allocation of %d bytes",
			errs.ErrInvalidArgument, offset, offset+len(src), len(a.mem))
	}
	copy(a.mem[offset:], src)
	return nil
}

func (a *hostAllocation) Read(offset int, dst []byte) error {
	if a.freed {
		return fmt.Errorf("%w: read from freed allocation", errs.ErrInvalidState)
	}
	if offset < 0 || offset+len(dst) > len(a.mem) {
		return fmt.Errorf("%w: read [%d,%d) outside allocation of %d bytes",
			errs.ErrInvalidArgument, offset, offset+len(dst), len(a.mem))
	}
	copy(dst, a.mem[offset:])
	return nil
}

func (a *hostAllocation) Size() int { return len(a.mem) }

func (a *hostAllocation) Free() {
	if a.freed {
		return
	}
	a.freed = true
	a.device.mu.Lock()
	a.device.used -= len(a.mem)
	a.device.mu.Unlock()
	a.mem = nil
}
