package renderer

import (
	"fmt"

	"github.com/richinsley/gocombiner/shader"
)

// fakeDriver records every call as a short string.
type fakeDriver struct {
	calls    []string
	compiled []*shader.Source
	initErr  error
	compErr  error
	next     ProgramHandle
	textures TextureHandle
}

func (d *fakeDriver) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDriver) reset() { d.calls = nil }

func (d *fakeDriver) Init() error {
	d.record("init")
	return d.initErr
}

func (d *fakeDriver) Dialect() shader.Dialect { return shader.DialectGLSL410 }
func (d *fakeDriver) ZIsFrom0To1() bool       { return false }

func (d *fakeDriver) CompileProgram(src *shader.Source) (ProgramHandle, error) {
	if d.compErr != nil {
		return 0, d.compErr
	}
	d.compiled = append(d.compiled, src)
	d.next++
	d.record("compile %d", d.next)
	return d.next, nil
}

func (d *fakeDriver) UniformLocation(p ProgramHandle, name string) int32 {
	switch name {
	case shader.UniformFrameCount:
		return 10
	case shader.UniformWindowHeight:
		return 11
	}
	return -1
}

func (d *fakeDriver) UseProgram(p ProgramHandle)   { d.record("use %d", p) }
func (d *fakeDriver) Uniform1i(loc int32, v int32) { d.record("uniform %d=%d", loc, v) }

func (d *fakeDriver) EnableAttrib(slot, size, stride, offset int) {
	d.record("enable %d size=%d stride=%d offset=%d", slot, size, stride, offset)
}

func (d *fakeDriver) DisableAttrib(slot int) { d.record("disable %d", slot) }

func (d *fakeDriver) NewTexture() TextureHandle {
	d.textures++
	return d.textures
}

func (d *fakeDriver) BindTexture(stage int, t TextureHandle) { d.record("bind %d tex=%d", stage, t) }

func (d *fakeDriver) UploadTexture(rgba []byte, width, height int) {
	d.record("upload %dx%d", width, height)
}

func (d *fakeDriver) SetSampler(stage int, linear bool, s, t WrapMode) {
	d.record("sampler %d linear=%v %v %v", stage, linear, s, t)
}

func (d *fakeDriver) SetDepthTest(on bool) { d.record("depth test %v", on) }
func (d *fakeDriver) SetDepthMask(on bool) { d.record("depth mask %v", on) }

func (d *fakeDriver) SetPolygonOffset(on bool, factor, units float32) {
	d.record("polygon offset %v %v %v", on, factor, units)
}

func (d *fakeDriver) SetViewport(x, y, width, height int) {
	d.record("viewport %d %d %d %d", x, y, width, height)
}

func (d *fakeDriver) SetScissor(x, y, width, height int) {
	d.record("scissor %d %d %d %d", x, y, width, height)
}

func (d *fakeDriver) SetScissorTest(on bool) { d.record("scissor test %v", on) }
func (d *fakeDriver) SetBlend(on bool)       { d.record("blend %v", on) }
func (d *fakeDriver) Clear(color [4]float32) { d.record("clear %v", color) }

func (d *fakeDriver) DrawTriangles(buf []float32, numVertices int) {
	d.record("draw %d floats %d vertices", len(buf), numVertices)
}
