// Package buffer bridges host-resident arrays to device memory.
//
// A Buffer wraps caller-owned host memory without copying and mirrors it
// into an Allocation obtained from a Device. Host mutation and device
// transfer are strictly separated: creating or updating a buffer never
// touches the device, only the explicit Sync calls cross the boundary, so
// every transfer is visible and schedulable by the caller.
package buffer

import (
	"fmt"
	"unsafe"

	"github.com/Faultbox/heightforge/pkg/errs"
	"github.com/Faultbox/heightforge/pkg/vertex"
)

// Buffer owns a device-side mirror of caller-supplied host memory.
//
// The host slice is a view: the buffer does not own it and cannot observe
// external writes. After mutating the wrapped memory directly, callers
// must MarkHostModified before SyncToDevice; a stale sync is never
// triggered implicitly.
type Buffer struct {
	host  []byte
	elem  vertex.ElemType
	count int // logical element count
	size  int // logical bytes, size <= len(host)

	device Device
	alloc  Allocation
	dirty  bool
}

// New wraps an existing host slice without copying. Supported element
// types are []float32, []uint32, []int32, []uint16 and []byte; anything
// else (complex-valued slices included) is an InvalidArgument.
func New(device Device, data any) (*Buffer, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: nil device", errs.ErrInvalidArgument)
	}

	host, elem, count, err := asBytes(data)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: empty host array", errs.ErrInvalidArgument)
	}

	return &Buffer{
		host:   host,
		elem:   elem,
		count:  count,
		size:   len(host),
		device: device,
		dirty:  true, // device mirror does not exist yet
	}, nil
}

// Elem returns the element type of the host array.
func (b *Buffer) Elem() vertex.ElemType { return b.elem }

// Len returns the logical element count.
func (b *Buffer) Len() int { return b.size / b.elem.Size() }

// SizeBytes returns the logical extent in bytes.
func (b *Buffer) SizeBytes() int { return b.size }

// CapacityBytes returns the host capacity in bytes.
func (b *Buffer) CapacityBytes() int { return len(b.host) }

// Dirty reports whether host contents are newer than the device mirror.
func (b *Buffer) Dirty() bool { return b.dirty }

// Bytes returns the logical host extent as raw bytes. The slice aliases
// the caller's memory; writes through it require MarkHostModified.
func (b *Buffer) Bytes() []byte { return b.host[:b.size] }

// Float32s reinterprets the logical extent as float32 values.
// It returns nil when the element type is not float32.
func (b *Buffer) Float32s() []float32 {
	if b.elem != vertex.Float32 || b.size == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b.host[0])), b.size/4)
}

// Uint32s reinterprets the logical extent as uint32 values.
// It returns nil when the element type is not uint32.
func (b *Buffer) Uint32s() []uint32 {
	if b.elem != vertex.Uint32 || b.size == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b.host[0])), b.size/4)
}

// MarkHostModified flags the buffer dirty after an external write to the
// wrapped host memory.
func (b *Buffer) MarkHostModified() { b.dirty = true }

// Update replaces the host-visible contents. The new data must match the
// element type and fit the existing capacity; resizing is a deliberate,
// separate operation so update cost stays predictable. The device is not
// touched.
func (b *Buffer) Update(data any) error {
	src, elem, _, err := asBytes(data)
	if err != nil {
		return err
	}
	if elem != b.elem {
		return fmt.Errorf("%w: update element type %s, buffer holds %s",
			errs.ErrInvalidArgument, elem, b.elem)
	}
	if len(src) > len(b.host) {
		return fmt.Errorf("%w: update of %d bytes exceeds capacity %d",
			errs.ErrInvalidArgument, len(src), len(b.host))
	}

	copy(b.host, src)
	b.size = len(src)
	b.count = b.size / b.elem.Size()
	b.dirty = true
	return nil
}

// SyncToDevice copies the full logical extent to the device mirror,
// allocating or growing it first. Growth is grow-only with capacity
// doubling to amortize reallocation. A clean buffer is a no-op.
func (b *Buffer) SyncToDevice() error {
	if !b.dirty && b.alloc != nil {
		return nil
	}

	if b.alloc == nil || b.alloc.Size() < b.size {
		newCap := b.size
		if b.alloc != nil {
			newCap = b.alloc.Size()
			for newCap < b.size {
				newCap *= 2
			}
		}
		alloc, err := b.device.Allocate(newCap)
		if err != nil {
			return fmt.Errorf("allocating %d bytes on %s: %w", newCap, b.device.Name(), err)
		}
		if b.alloc != nil {
			b.alloc.Free()
		}
		b.alloc = alloc
	}

	if err := b.alloc.Write(0, b.host[:b.size]); err != nil {
		return fmt.Errorf("uploading %d bytes: %w", b.size, err)
	}
	b.dirty = false
	return nil
}

// SyncFromDevice copies the device mirror back into the host array, for
// read-back of device-computed results. Bytes beyond the logical extent
// are not meaningful and are not read.
func (b *Buffer) SyncFromDevice() error {
	if b.alloc == nil {
		return fmt.Errorf("%w: no device mirror to read back", errs.ErrInvalidState)
	}
	if err := b.alloc.Read(0, b.host[:b.size]); err != nil {
		return fmt.Errorf("downloading %d bytes: %w", b.size, err)
	}
	b.dirty = false
	return nil
}

// Release frees the device mirror. The host view stays valid; a later
// SyncToDevice reallocates.
func (b *Buffer) Release() {
	if b.alloc != nil {
		b.alloc.Free()
		b.alloc = nil
	}
	b.dirty = true
}

// asBytes reinterprets a supported slice as its backing bytes without
// copying.
func asBytes(data any) ([]byte, vertex.ElemType, int, error) {
	switch v := data.(type) {
	case []float32:
		if len(v) == 0 {
			return nil, vertex.Float32, 0, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4), vertex.Float32, len(v), nil
	case []uint32:
		if len(v) == 0 {
			return nil, vertex.Uint32, 0, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4), vertex.Uint32, len(v), nil
	case []int32:
		if len(v) == 0 {
			return nil, vertex.Int32, 0, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4), vertex.Int32, len(v), nil
	case []uint16:
		if len(v) == 0 {
			return nil, vertex.Uint16, 0, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*2), vertex.Uint16, len(v), nil
	case []byte:
		return v, vertex.Uint8, len(v), nil
	default:
		return nil, 0, 0, fmt.Errorf("%w: unsupported host array type %T", errs.ErrInvalidArgument, data)
	}
}
