// Package shader compiles GLSL to SPIR-V through external toolchain
// binaries and validates the resulting blobs.
package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// spirvMagic is the first word of every SPIR-V module, 0x07230203
// little-endian on disk.
const spirvMagic = 0x07230203

// minSPIRVLen covers the 5-word module header.
const minSPIRVLen = 20

// Stage names a shader pipeline stage.
type Stage string

const (
	StageVertex         Stage = "vertex"
	StageFragment       Stage = "fragment"
	StageCompute        Stage = "compute"
	StageTessControl    Stage = "tesscontrol"
	StageTessEvaluation Stage = "tesseval"
	StageGeometry       Stage = "geometry"
)

// Valid reports whether the stage is one glslc understands.
func (s Stage) Valid() bool {
	switch s {
	case StageVertex, StageFragment, StageCompute,
		StageTessControl, StageTessEvaluation, StageGeometry:
		return true
	}
	return false
}

// ValidateSPIRV checks the structural invariants of a SPIR-V blob: at
// least a full header, whole 32-bit words, and the magic number first.
// It does not verify instruction semantics; that is spirv-val's job.
func ValidateSPIRV(blob []byte) error {
	if len(blob) < minSPIRVLen {
		return fmt.Errorf("%w: spirv blob of %d bytes is shorter than the %d byte header",
			errs.ErrDataIntegrity, len(blob), minSPIRVLen)
	}
	if len(blob)%4 != 0 {
		return fmt.Errorf("%w: spirv blob length %d is not word aligned",
			errs.ErrDataIntegrity, len(blob))
	}
	if magic := binary.LittleEndian.Uint32(blob); magic != spirvMagic {
		return fmt.Errorf("%w: bad spirv magic 0x%08x, want 0x%08x",
			errs.ErrDataIntegrity, magic, uint32(spirvMagic))
	}
	return nil
}
