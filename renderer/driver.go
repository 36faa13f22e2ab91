package renderer

import (
	"errors"
	"fmt"

	"github.com/richinsley/gocombiner/shader"
)

// ProgramHandle names a linked program inside a [Driver].
type ProgramHandle uint32

// TextureHandle names a texture object inside a [Driver]. Zero is no texture.
type TextureHandle uint32

var (
	// ErrCacheFull is returned when a new program would exceed the cache capacity.
	ErrCacheFull = errors.New("program cache full")
	// ErrCapability is returned by Driver.Init when the host cannot run
	// generated shaders at all.
	ErrCapability = errors.New("missing graphics capability")
	// ErrNotInitialized is returned by operations used before Init.
	ErrNotInitialized = errors.New("renderer not initialized")
)

// CompileError carries the driver log of a failed compile or link.
type CompileError struct {
	// Stage is "vertex", "fragment" or "link".
	Stage string
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader failed: %s", e.Stage, e.Log)
}

// WrapMode is the texture addressing mode along one axis.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapMirror
	WrapClamp
)

// Tile addressing flag bits as carried by texture tile descriptors.
const (
	TileMirror = 0x1
	TileClamp  = 0x2
)

// WrapModeFromFlags maps tile addressing bits to a wrap mode. Clamp takes
// precedence over mirror.
func WrapModeFromFlags(flags uint32) WrapMode {
	switch {
	case flags&TileClamp != 0:
		return WrapClamp
	case flags&TileMirror != 0:
		return WrapMirror
	}
	return WrapRepeat
}

func (w WrapMode) String() string {
	switch w {
	case WrapRepeat:
		return "repeat"
	case WrapMirror:
		return "mirror"
	case WrapClamp:
		return "clamp"
	}
	return fmt.Sprintf("WrapMode(%d)", int(w))
}

// Driver is the graphics API a [Renderer] issues commands to. All methods are
// called from the rendering thread.
type Driver interface {
	// Init prepares the streaming vertex buffer, depth function and blend
	// function. A host that cannot compile shaders at runtime reports an
	// error wrapping ErrCapability.
	Init() error
	// Dialect is the shading language CompileProgram accepts.
	Dialect() shader.Dialect
	ZIsFrom0To1() bool

	// CompileProgram compiles both stages of src, binds src.Attribs to their
	// slots and links. Failures are reported as *CompileError.
	CompileProgram(src *shader.Source) (ProgramHandle, error)
	// UniformLocation returns -1 when name is not an active uniform.
	UniformLocation(p ProgramHandle, name string) int32
	UseProgram(p ProgramHandle)
	Uniform1i(loc int32, v int32)

	// EnableAttrib configures slot as size floats at offset bytes within a
	// vertex of stride bytes.
	EnableAttrib(slot, size, stride, offset int)
	DisableAttrib(slot int)

	NewTexture() TextureHandle
	BindTexture(stage int, t TextureHandle)
	// UploadTexture replaces the image of the texture bound on the active stage.
	UploadTexture(rgba []byte, width, height int)
	SetSampler(stage int, linear bool, s, t WrapMode)

	SetDepthTest(on bool)
	SetDepthMask(on bool)
	SetPolygonOffset(on bool, factor, units float32)
	SetViewport(x, y, width, height int)
	SetScissor(x, y, width, height int)
	SetScissorTest(on bool)
	SetBlend(on bool)
	// Clear clears color and depth.
	Clear(color [4]float32)

	// DrawTriangles replaces the vertex buffer with buf and draws
	// numVertices vertices from offset 0 as a triangle list.
	DrawTriangles(buf []float32, numVertices int)
}
