// Package renderer caches combiner programs and tracks the pipeline state a
// frame is drawn with, issuing commands to a graphics [Driver].
package renderer

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/richinsley/gocombiner/cc"
	"github.com/richinsley/gocombiner/shader"
)

const floatSize = 4

// DefaultClearColor is the color StartFrame clears to unless configured.
var DefaultClearColor = [4]float32{1, 0, 0, 1}

const capabilityMessage = "The graphics driver cannot compile shaders at runtime, " +
	"which this program requires.\n\nPlease install a driver with runtime shader compilation support."

type Options struct {
	// Capacity bounds the number of programs. Defaults to DefaultCapacity.
	Capacity int
	// ClearColor defaults to DefaultClearColor when nil.
	ClearColor *[4]float32
	// Describer resolves formula ids. Defaults to cc.Packed.
	Describer cc.Describer

	// Fatal reports a defect the renderer cannot continue from. It is
	// expected not to return. Defaults to log.Fatalf.
	Fatal func(format string, v ...any)
	// Notify shows msg to the user and returns once it is dismissed.
	Notify func(msg string)
	// Exit ends the process after Notify. Defaults to os.Exit.
	Exit func(code int)
}

func (o Options) withDefaults() Options {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.ClearColor == nil {
		c := DefaultClearColor
		o.ClearColor = &c
	}
	if o.Describer == nil {
		o.Describer = cc.Packed
	}
	if o.Fatal == nil {
		o.Fatal = log.Fatalf
	}
	if o.Notify == nil {
		o.Notify = func(msg string) { log.Print(msg) }
	}
	if o.Exit == nil {
		o.Exit = os.Exit
	}
	return o
}

type Rect struct {
	X, Y, Width, Height int
}

// State mirrors what the renderer last sent to the driver.
type State struct {
	Program     *Program
	Textures    [2]TextureHandle
	ActiveStage int

	DepthTest   bool
	DepthMask   bool
	Decal       bool
	Blend       bool
	ScissorTest bool
	Viewport    Rect
	Scissor     Rect

	FrameCount   uint32
	WindowHeight int
}

// Renderer implements [RenderingAPI] over a [Driver]. It is bound to the
// rendering thread; calling it from more than one goroutine is undefined.
type Renderer struct {
	drv         Driver
	opts        Options
	cache       *ProgramCache
	state       State
	initialized bool
}

func New(drv Driver, opts Options) *Renderer {
	opts = opts.withDefaults()
	return &Renderer{
		drv:   drv,
		opts:  opts,
		cache: NewProgramCache(opts.Capacity),
	}
}

func (r *Renderer) State() State         { return r.state }
func (r *Renderer) Cache() *ProgramCache { return r.cache }
func (r *Renderer) ZIsFrom0To1() bool    { return r.drv.ZIsFrom0To1() }
func (r *Renderer) Options() Options     { return r.opts }

// Init sets up the driver. It must be called before any other method.
func (r *Renderer) Init() {
	if err := r.drv.Init(); err != nil {
		if errors.Is(err, ErrCapability) {
			log.Printf("renderer: %v", err)
			r.opts.Notify(capabilityMessage)
			r.opts.Exit(0)
			return
		}
		r.opts.Fatal("renderer: init: %v", err)
		return
	}
	r.drv.SetDepthTest(true)
	r.state.DepthTest = true
	r.state.DepthMask = true
	r.initialized = true
}

func (r *Renderer) OnResize()     {}
func (r *Renderer) EndFrame()     {}
func (r *Renderer) FinishRender() {}

// StartFrame advances the frame counter and clears color and depth with
// scissoring disabled.
func (r *Renderer) StartFrame() {
	r.state.FrameCount++
	r.drv.SetScissorTest(false)
	r.drv.SetDepthMask(true)
	r.state.DepthMask = true
	r.drv.Clear(*r.opts.ClearColor)
	r.drv.SetScissorTest(true)
	r.state.ScissorTest = true
	if p := r.state.Program; p != nil {
		r.pushUniforms(p)
	}
}

// ───────────────────────────────── Programs ─────────────────────────────────

// UnloadShader disables the vertex attributes of old. old may be nil.
func (r *Renderer) UnloadShader(old *Program) {
	if old == nil {
		return
	}
	for _, a := range old.Attribs {
		r.drv.DisableAttrib(a.Slot)
	}
	if r.state.Program == old {
		r.state.Program = nil
	}
}

// LoadShader makes p current, lays out its attributes over the interleaved
// vertex stride and pushes its noise uniforms.
func (r *Renderer) LoadShader(p *Program) {
	r.drv.UseProgram(p.Handle)
	stride := p.Stride * floatSize
	offset := 0
	for _, a := range p.Attribs {
		r.drv.EnableAttrib(a.Slot, a.Size, stride, offset*floatSize)
		offset += a.Size
	}
	r.state.Program = p
	r.pushUniforms(p)
}

// BindProgram unloads the current program and loads p.
func (r *Renderer) BindProgram(p *Program) {
	r.UnloadShader(r.state.Program)
	r.LoadShader(p)
}

func (r *Renderer) pushUniforms(p *Program) {
	if !p.Noise {
		return
	}
	r.drv.Uniform1i(p.FrameCountLoc, int32(r.state.FrameCount))
	r.drv.Uniform1i(p.WindowHeightLoc, int32(r.state.WindowHeight))
}

// CreateAndLoadNewShader builds the program for id and binds it.
func (r *Renderer) CreateAndLoadNewShader(id uint32) *Program {
	if !r.initialized {
		r.opts.Fatal("renderer: program %#08x: %v", id, ErrNotInitialized)
		return nil
	}
	p, err := r.cache.GetOrCreate(id, r.build)
	if err != nil {
		r.opts.Fatal("renderer: %v", err)
		return nil
	}
	r.BindProgram(p)
	return p
}

func (r *Renderer) build(id uint32) (*Program, error) {
	f := r.opts.Describer.Describe(id)
	src, err := shader.Generate(f, r.drv.Dialect())
	if err != nil {
		return nil, err
	}
	h, err := r.drv.CompileProgram(&src)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	p := &Program{
		ID:              id,
		Handle:          h,
		NumInputs:       f.NumInputs,
		UsedTextures:    f.UsedTextures,
		Attribs:         src.Attribs,
		Stride:          src.Stride,
		Noise:           src.Noise,
		FrameCountLoc:   -1,
		WindowHeightLoc: -1,
	}
	if p.Noise {
		p.FrameCountLoc = r.drv.UniformLocation(h, shader.UniformFrameCount)
		p.WindowHeightLoc = r.drv.UniformLocation(h, shader.UniformWindowHeight)
	}
	log.Printf("renderer: program %#08x: %d attribs, stride %d, textures %v, noise %v",
		id, len(p.Attribs), p.Stride, p.UsedTextures, p.Noise)
	return p, nil
}

// LookupShader returns the program already built for id, or nil.
func (r *Renderer) LookupShader(id uint32) *Program { return r.cache.Lookup(id) }

func (r *Renderer) ShaderGetInfo(p *Program) (numInputs int, usedTextures [2]bool) {
	return p.NumInputs, p.UsedTextures
}

// ───────────────────────────────── Textures ─────────────────────────────────

func (r *Renderer) NewTexture() TextureHandle { return r.drv.NewTexture() }

func (r *Renderer) checkStage(stage int) bool {
	if stage < 0 || stage >= len(r.state.Textures) {
		r.opts.Fatal("renderer: texture stage %d out of range", stage)
		return false
	}
	return true
}

// SelectTexture binds t to stage 0 or 1 and makes that stage active.
func (r *Renderer) SelectTexture(stage int, t TextureHandle) {
	if !r.checkStage(stage) {
		return
	}
	r.drv.BindTexture(stage, t)
	r.state.Textures[stage] = t
	r.state.ActiveStage = stage
}

// UploadTexture replaces the image of the texture on the active stage.
func (r *Renderer) UploadTexture(rgba []byte, width, height int) {
	if len(rgba) < width*height*4 {
		r.opts.Fatal("renderer: texture upload of %dx%d needs %d bytes, got %d",
			width, height, width*height*4, len(rgba))
		return
	}
	r.drv.UploadTexture(rgba, width, height)
}

// SetSamplerParameters sets filtering and wrapping for stage from tile
// addressing flags.
func (r *Renderer) SetSamplerParameters(stage int, linear bool, cms, cmt uint32) {
	if !r.checkStage(stage) {
		return
	}
	r.drv.SetSampler(stage, linear, WrapModeFromFlags(cms), WrapModeFromFlags(cmt))
	r.state.ActiveStage = stage
}

// ─────────────────────────────── Pipeline state ───────────────────────────────

func (r *Renderer) SetDepthTest(on bool) {
	r.drv.SetDepthTest(on)
	r.state.DepthTest = on
}

func (r *Renderer) SetDepthMask(on bool) {
	r.drv.SetDepthMask(on)
	r.state.DepthMask = on
}

// SetZmodeDecal pulls decal geometry toward the viewer so it wins depth
// ties with the surface beneath it.
func (r *Renderer) SetZmodeDecal(on bool) {
	if on {
		r.drv.SetPolygonOffset(true, -2, -2)
	} else {
		r.drv.SetPolygonOffset(false, 0, 0)
	}
	r.state.Decal = on
}

// SetViewport also records the window height used for noise dithering.
func (r *Renderer) SetViewport(x, y, width, height int) {
	r.drv.SetViewport(x, y, width, height)
	r.state.Viewport = Rect{x, y, width, height}
	r.state.WindowHeight = height
	if p := r.state.Program; p != nil {
		r.pushUniforms(p)
	}
}

func (r *Renderer) SetScissor(x, y, width, height int) {
	r.drv.SetScissor(x, y, width, height)
	r.state.Scissor = Rect{x, y, width, height}
}

func (r *Renderer) SetUseAlpha(on bool) {
	r.drv.SetBlend(on)
	r.state.Blend = on
}

// DrawTriangles streams buf and draws numTris triangles from its start.
func (r *Renderer) DrawTriangles(buf []float32, numTris int) {
	if p := r.state.Program; p != nil {
		if need := 3 * numTris * p.Stride; len(buf) < need {
			r.opts.Fatal("renderer: %d triangles of program %#08x need %d floats, got %d",
				numTris, p.ID, need, len(buf))
			return
		}
	}
	r.drv.DrawTriangles(buf, 3*numTris)
}
