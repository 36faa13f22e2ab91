// Package gldriver implements renderer.Driver on OpenGL 4.1 core or an
// OpenGL ES 3 context.
package gldriver

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/gocombiner/renderer"
	"github.com/richinsley/gocombiner/shader"
	"github.com/richinsley/gocombiner/translator"
)

var glInitOnce sync.Once

var _ renderer.Driver = (*Driver)(nil)

type Options struct {
	// GLES is set when the current context is OpenGL ES 3.
	GLES bool
	// Translate routes generated GLSL ES through the shader translator
	// before handing it to the driver.
	Translate bool
}

// Driver issues GL calls on the thread its context is current on.
type Driver struct {
	opts Options
	vao  uint32
	vbo  uint32

	// names holds translated uniform names per program.
	names map[renderer.ProgramHandle]map[string]string
}

func New(opts Options) *Driver {
	return &Driver{
		opts:  opts,
		names: make(map[renderer.ProgramHandle]map[string]string),
	}
}

func (d *Driver) Init() error {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return fmt.Errorf("gl.Init failed: %w", initErr)
	}

	glsl := gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))
	if glsl == "" {
		return fmt.Errorf("gldriver: no shading language support: %w", renderer.ErrCapability)
	}
	if d.opts.Translate {
		if _, err := translator.Get(); err != nil {
			return fmt.Errorf("gldriver: %v: %w", err, renderer.ErrCapability)
		}
	}
	log.Printf("gldriver: %s, GLSL %s, dialect %v", gl.GoStr(gl.GetString(gl.VERSION)), glsl, d.Dialect())

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)

	gl.DepthFunc(gl.LEQUAL)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return nil
}

// Dialect is GLSL ES whenever the source is translated, since that is what
// the translator accepts.
func (d *Driver) Dialect() shader.Dialect {
	if d.opts.GLES || d.opts.Translate {
		return shader.DialectGLSLES300
	}
	return shader.DialectGLSL410
}

func (d *Driver) ZIsFrom0To1() bool { return false }

func (d *Driver) UseProgram(p renderer.ProgramHandle) { gl.UseProgram(uint32(p)) }

func (d *Driver) UniformLocation(p renderer.ProgramHandle, name string) int32 {
	if m, ok := d.names[p][name]; ok && m != "" {
		name = m
	}
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *Driver) Uniform1i(loc int32, v int32) {
	if loc != -1 {
		gl.Uniform1i(loc, v)
	}
}

func (d *Driver) EnableAttrib(slot, size, stride, offset int) {
	gl.EnableVertexAttribArray(uint32(slot))
	gl.VertexAttribPointerWithOffset(uint32(slot), int32(size), gl.FLOAT, false, int32(stride), uintptr(offset))
}

func (d *Driver) DisableAttrib(slot int) { gl.DisableVertexAttribArray(uint32(slot)) }

func (d *Driver) SetDepthTest(on bool)   { enable(gl.DEPTH_TEST, on) }
func (d *Driver) SetDepthMask(on bool)   { gl.DepthMask(on) }
func (d *Driver) SetScissorTest(on bool) { enable(gl.SCISSOR_TEST, on) }
func (d *Driver) SetBlend(on bool)       { enable(gl.BLEND, on) }

func (d *Driver) SetPolygonOffset(on bool, factor, units float32) {
	gl.PolygonOffset(factor, units)
	enable(gl.POLYGON_OFFSET_FILL, on)
}

func (d *Driver) SetViewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Driver) SetScissor(x, y, width, height int) {
	gl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

func (d *Driver) Clear(color [4]float32) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Driver) DrawTriangles(buf []float32, numVertices int) {
	if len(buf) == 0 || numVertices == 0 {
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(buf)*4, gl.Ptr(buf), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(numVertices))
}

// ReadPixels returns the RGBA contents of a framebuffer rectangle, bottom
// row first.
func (d *Driver) ReadPixels(x, y, width, height int) []byte {
	pix := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix
}

func enable(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}
