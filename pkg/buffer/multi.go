package buffer

import (
	"fmt"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// MultiBuffer groups named vertex buffers and one index buffer under a
// single handle so a renderer can bind them with one call. Enumeration
// order is insertion order, which keeps shader input slot binding
// deterministic.
type MultiBuffer struct {
	device  Device
	names   []string
	vertex  map[string]*Buffer
	indices *Buffer
}

// NewMultiBuffer returns an empty aggregate bound to one device.
func NewMultiBuffer(device Device) *MultiBuffer {
	return &MultiBuffer{
		device: device,
		vertex: make(map[string]*Buffer),
	}
}

// AddVertexBuffer wraps data as a vertex buffer registered under name.
// Names must be unique within the aggregate.
func (m *MultiBuffer) AddVertexBuffer(name string, data any) (*Buffer, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty vertex buffer name", errs.ErrInvalidArgument)
	}
	if _, ok := m.vertex[name]; ok {
		return nil, fmt.Errorf("%w: duplicate vertex buffer %q", errs.ErrInvalidState, name)
	}

	buf, err := New(m.device, data)
	if err != nil {
		return nil, fmt.Errorf("vertex buffer %q: %w", name, err)
	}
	m.names = append(m.names, name)
	m.vertex[name] = buf
	return buf, nil
}

// AddIndexBuffer wraps data as the aggregate's index buffer. At most one
// index buffer may be set.
func (m *MultiBuffer) AddIndexBuffer(data any) (*Buffer, error) {
	if m.indices != nil {
		return nil, fmt.Errorf("%w: index buffer already set", errs.ErrInvalidState)
	}

	buf, err := New(m.device, data)
	if err != nil {
		return nil, fmt.Errorf("index buffer: %w", err)
	}
	m.indices = buf
	return buf, nil
}

// VertexBuffer returns the buffer registered under name.
func (m *MultiBuffer) VertexBuffer(name string) (*Buffer, bool) {
	b, ok := m.vertex[name]
	return b, ok
}

// VertexBufferNames returns registered names in insertion order.
func (m *MultiBuffer) VertexBufferNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// IndexBuffer returns the index buffer, or nil if none was set.
func (m *MultiBuffer) IndexBuffer() *Buffer {
	return m.indices
}

// SyncAll uploads every dirty buffer in the aggregate, vertex buffers in
// insertion order and the index buffer last.
func (m *MultiBuffer) SyncAll() error {
	for _, name := range m.names {
		if err := m.vertex[name].SyncToDevice(); err != nil {
			return fmt.Errorf("syncing %q: %w", name, err)
		}
	}
	if m.indices != nil {
		if err := m.indices.SyncToDevice(); err != nil {
			return fmt.Errorf("syncing indices: %w", err)
		}
	}
	return nil
}

// Release frees every device mirror in the aggregate.
func (m *MultiBuffer) Release() {
	for _, name := range m.names {
		m.vertex[name].Release()
	}
	if m.indices != nil {
		m.indices.Release()
	}
}
