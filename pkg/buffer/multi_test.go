package buffer

import (
	"errors"
	"testing"

	"github.com/Faultbox/heightforge/pkg/errs"
)

func TestMultiBufferInsertionOrder(t *testing.T) {
	mb := NewMultiBuffer(NewHostDevice())

	names := []string{"vertices", "normals", "colors"}
	for _, name := range names {
		if _, err := mb.AddVertexBuffer(name, []float32{1, 2, 3}); err != nil {
			t.Fatalf("AddVertexBuffer(%q): %v", name, err)
		}
	}

	got := mb.VertexBufferNames()
	if len(got) != len(names) {
		t.Fatalf("got %d names, want %d", len(got), len(names))
	}
	for i, name := range names {
		if got[i] != name {
			t.Errorf("name[%d] = %q, want %q (insertion order must be stable)", i, got[i], name)
		}
	}
}

func TestMultiBufferDuplicateName(t *testing.T) {
	mb := NewMultiBuffer(NewHostDevice())
	if _, err := mb.AddVertexBuffer("vertices", []float32{1}); err != nil {
		t.Fatalf("AddVertexBuffer: %v", err)
	}
	if _, err := mb.AddVertexBuffer("vertices", []float32{2}); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on duplicate name, got %v", err)
	}
}

func TestMultiBufferSingleIndexBuffer(t *testing.T) {
	mb := NewMultiBuffer(NewHostDevice())
	if _, err := mb.AddIndexBuffer([]uint32{0, 1, 2}); err != nil {
		t.Fatalf("AddIndexBuffer: %v", err)
	}
	if _, err := mb.AddIndexBuffer([]uint32{0, 2, 1}); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on second index buffer, got %v", err)
	}
	if mb.IndexBuffer() == nil {
		t.Error("IndexBuffer returned nil after successful registration")
	}
}

func TestMultiBufferSyncAll(t *testing.T) {
	dev := NewHostDevice()
	mb := NewMultiBuffer(dev)
	if _, err := mb.AddVertexBuffer("vertices", []float32{0, 0, 0, 1, 1, 1}); err != nil {
		t.Fatalf("AddVertexBuffer: %v", err)
	}
	if _, err := mb.AddIndexBuffer([]uint32{0, 1, 2}); err != nil {
		t.Fatalf("AddIndexBuffer: %v", err)
	}
	if err := mb.SyncAll(); err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if dev.UsedBytes() != 6*4+3*4 {
		t.Errorf("device usage = %d, want %d", dev.UsedBytes(), 6*4+3*4)
	}

	mb.Release()
	if dev.UsedBytes() != 0 {
		t.Errorf("device usage after Release = %d, want 0", dev.UsedBytes())
	}
}
