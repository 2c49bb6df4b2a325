package shader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// Compiler turns GLSL source into validated SPIR-V blobs using the
// Vulkan SDK's glslc, with a content-addressed disk cache so repeated
// compiles of identical source are free.
type Compiler struct {
	glslc     string
	validator string // empty when spirv-val is unavailable
	cacheDir  string
	log       *zap.Logger
}

// NewCompiler locates the toolchain and prepares the cache directory.
// glslc is required; a missing spirv-val only disables the extra
// validation pass with a warning.
func NewCompiler(cacheDir string, log *zap.Logger) (*Compiler, error) {
	if log == nil {
		log = zap.NewNop()
	}

	glslc, err := findTool("glslc")
	if err != nil {
		return nil, fmt.Errorf("%w: glslc not found in VULKAN_SDK or PATH", errs.ErrExternalToolUnavailable)
	}

	validator, err := findTool("spirv-val")
	if err != nil {
		validator = ""
		log.Warn("spirv-val not found, compiled shaders will not be validated")
	}

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating shader cache dir %s: %w", cacheDir, err)
		}
	}

	return &Compiler{glslc: glslc, validator: validator, cacheDir: cacheDir, log: log}, nil
}

// findTool looks under $VULKAN_SDK/bin first, then falls back to PATH.
func findTool(name string) (string, error) {
	if sdk := os.Getenv("VULKAN_SDK"); sdk != "" {
		candidate := filepath.Join(sdk, "bin", name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return exec.LookPath(name)
}

// Compile builds one GLSL stage to SPIR-V. Identical source and stage
// always produce the same cache key, so recompiles hit the disk cache.
func (c *Compiler) Compile(ctx context.Context, source string, stage Stage) ([]byte, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("%w: unknown shader stage %q", errs.ErrInvalidArgument, stage)
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: empty shader source", errs.ErrInvalidArgument)
	}

	key := cacheKey(source, stage)
	if blob, ok := c.cached(key); ok {
		c.log.Debug("shader cache hit", zap.String("stage", string(stage)), zap.String("key", key[:12]))
		return blob, nil
	}

	blob, err := c.runGLSLC(ctx, source, stage)
	if err != nil {
		return nil, err
	}
	if err := ValidateSPIRV(blob); err != nil {
		return nil, fmt.Errorf("glslc output: %w", err)
	}
	if c.validator != "" {
		if err := c.runValidator(ctx, blob); err != nil {
			return nil, err
		}
	}

	c.store(key, blob)
	return blob, nil
}

// cacheKey hashes stage and source together; either changing changes
// the key.
func cacheKey(source string, stage Stage) string {
	h := sha256.New()
	h.Write([]byte(stage))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Compiler) cachePath(key string) string {
	return filepath.Join(c.cacheDir, key+".spv")
}

func (c *Compiler) cached(key string) ([]byte, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	blob, err := os.ReadFile(c.cachePath(key))
	if err != nil || ValidateSPIRV(blob) != nil {
		return nil, false
	}
	return blob, true
}

// store writes the blob back to the cache. Failures only cost the next
// compile, so they are logged and swallowed.
func (c *Compiler) store(key string, blob []byte) {
	if c.cacheDir == "" {
		return
	}
	if err := os.WriteFile(c.cachePath(key), blob, 0o644); err != nil {
		c.log.Warn("writing shader cache", zap.Error(err))
	}
}

func (c *Compiler) runGLSLC(ctx context.Context, source string, stage Stage) ([]byte, error) {
	dir, err := os.MkdirTemp("", "heightforge-shader-*")
	if err != nil {
		return nil, fmt.Errorf("shader temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "shader.glsl")
	out := filepath.Join(dir, "shader.spv")
	if err := os.WriteFile(in, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("writing shader source: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.glslc,
		"-fshader-stage="+string(stage), "-o", out, in)
	if msg, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("glslc failed for %s stage: %w: %s",
			stage, err, strings.TrimSpace(string(msg)))
	}

	blob, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("reading glslc output: %w", err)
	}
	return blob, nil
}

func (c *Compiler) runValidator(ctx context.Context, blob []byte) error {
	dir, err := os.MkdirTemp("", "heightforge-spv-*")
	if err != nil {
		return fmt.Errorf("validator temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "shader.spv")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("writing blob for validation: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.validator, path)
	if msg, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: spirv-val rejected module: %s",
			errs.ErrDataIntegrity, strings.TrimSpace(string(msg)))
	}
	return nil
}
