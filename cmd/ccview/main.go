// Command ccview draws a grid of combiner formulas, each on an animated quad,
// in a window or an offscreen EGL surface. Frames can be recorded to video
// or saved as a PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/gocombiner/capture"
	"github.com/richinsley/gocombiner/cc"
	"github.com/richinsley/gocombiner/gldriver"
	"github.com/richinsley/gocombiner/glfwcontext"
	"github.com/richinsley/gocombiner/graphics"
	"github.com/richinsley/gocombiner/headless"
	"github.com/richinsley/gocombiner/options"
	"github.com/richinsley/gocombiner/renderer"
)

func init() {
	// GL calls must stay on the main thread.
	runtime.LockOSThread()
}

type viewer struct {
	opts options.Options
	ctx  graphics.Context
	drv  *gldriver.Driver
	r    *renderer.Renderer

	formulas []uint32
	rects    [][4]float32
	tex      [2]renderer.TextureHandle
	buf      []float32

	paused bool
	t      float32
}

func newContext(o options.Options) (graphics.Context, func(*viewer), error) {
	if o.Headless {
		h, err := headless.NewHeadless(o.Width, o.Height)
		if err != nil {
			return nil, nil, err
		}
		return h, func(*viewer) {}, nil
	}
	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, err
	}
	c, err := glfwcontext.New(o.Width, o.Height, "ccview", true)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, err
	}
	keys := func(v *viewer) {
		c.RegisterKeyCallback(glfw.KeySpace, func() { v.paused = !v.paused })
	}
	return c, keys, nil
}

func (v *viewer) uploadTextures() error {
	img0 := checker(textureSize)
	if v.opts.Texture != "" {
		var err error
		if img0, err = loadTexture(v.opts.Texture, textureSize); err != nil {
			return fmt.Errorf("texture %s: %w", v.opts.Texture, err)
		}
	}
	for stage, img := range []*image.RGBA{img0, gradient(textureSize)} {
		v.tex[stage] = v.r.NewTexture()
		v.r.SelectTexture(stage, v.tex[stage])
		v.r.UploadTexture(img.Pix, textureSize, textureSize)
	}
	return nil
}

// program returns the cached program for id, building it on first use.
func (v *viewer) program(id uint32) *renderer.Program {
	p := v.r.LookupShader(id)
	if p == nil {
		return v.r.CreateAndLoadNewShader(id)
	}
	if v.r.State().Program != p {
		v.r.BindProgram(p)
	}
	return p
}

func (v *viewer) drawFrame() {
	w, h := v.ctx.GetFramebufferSize()
	v.r.StartFrame()
	v.r.SetViewport(0, 0, w, h)
	v.r.SetScissor(0, 0, w, h)
	v.r.SetDepthTest(false)
	v.r.SetDepthMask(true)
	v.r.SetZmodeDecal(false)

	for i, id := range v.formulas {
		p := v.program(id)
		_, used := v.r.ShaderGetInfo(p)
		if used[0] {
			v.r.SelectTexture(0, v.tex[0])
			v.r.SetSamplerParameters(0, true, 0, 0)
		}
		if used[1] {
			v.r.SelectTexture(1, v.tex[1])
			v.r.SetSamplerParameters(1, false, renderer.TileMirror, renderer.TileClamp)
		}
		v.r.SetUseAlpha(cc.Decode(id).Alpha)
		v.buf = appendQuad(v.buf[:0], p, v.rects[i], v.t+float32(i))
		v.r.DrawTriangles(v.buf, 2)
	}
	v.r.EndFrame()
}

func (v *viewer) run() error {
	var rec *capture.Recorder
	if v.opts.Record != "" {
		// the framebuffer can be larger than the window on high density displays
		w, h := v.ctx.GetFramebufferSize()
		var err error
		rec, err = capture.NewRecorder(capture.RecorderOptions{
			Output:     v.opts.Record,
			Width:      w,
			Height:     h,
			FPS:        v.opts.FPS,
			Codec:      v.opts.Codec,
			FFmpegPath: v.opts.FFmpegPath,
			HWAccel:    v.opts.HWAccel,
		})
		if err != nil {
			return err
		}
	}

	var last *image.RGBA
	start := v.ctx.Time()
	for frame := 0; v.opts.Frames == 0 || frame < v.opts.Frames; frame++ {
		if v.ctx.ShouldClose() {
			break
		}
		if !v.paused {
			if rec != nil {
				v.t = float32(frame) / float32(v.opts.FPS)
			} else {
				v.t = float32(v.ctx.Time() - start)
			}
		}
		v.drawFrame()

		if rec != nil || v.opts.Snapshot != "" {
			w, h := v.ctx.GetFramebufferSize()
			img, err := capture.Snapshot(v.drv, w, h)
			if err != nil {
				return err
			}
			last = img
			if rec != nil {
				if err := rec.WriteFrame(img); err != nil {
					rec.Close()
					return err
				}
			}
		}
		v.ctx.EndFrame()
		v.r.FinishRender()
	}

	if rec != nil {
		if err := rec.Close(); err != nil {
			return err
		}
	}
	if v.opts.Snapshot != "" && last != nil {
		if err := capture.WritePNG(v.opts.Snapshot, last); err != nil {
			return err
		}
		log.Printf("Saved %s", v.opts.Snapshot)
	}
	return nil
}

func main() {
	flags := options.NewFlags(flag.CommandLine)
	var help = flag.Bool("help", false, "Show help message")
	flag.Parse()
	if *help {
		fmt.Println("Color combiner formula viewer")
		flag.PrintDefaults()
		return
	}

	opts, err := flags.Resolve()
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	formulas, err := formulaSet(opts)
	if err != nil {
		log.Fatalf("Invalid formulas: %v", err)
	}

	ctx, bindKeys, err := newContext(opts)
	if err != nil {
		log.Fatalf("Failed to create graphics context: %v", err)
	}
	defer func() {
		ctx.Shutdown()
		if !opts.Headless {
			glfwcontext.TerminateGraphics()
		}
	}()
	ctx.MakeCurrent()

	drv := gldriver.New(gldriver.Options{GLES: ctx.IsGLES(), Translate: opts.Translate})
	r := renderer.New(drv, renderer.Options{
		Capacity:   opts.Capacity,
		ClearColor: &opts.ClearColor,
		Fatal:      log.Fatalf,
		Notify:     ctx.ShowMessage,
	})
	r.Init()

	v := &viewer{
		opts:     opts,
		ctx:      ctx,
		drv:      drv,
		r:        r,
		formulas: formulas,
		rects:    grid(len(formulas)),
	}
	bindKeys(v)
	if err := v.uploadTextures(); err != nil {
		log.Fatalf("Failed to load textures: %v", err)
	}
	log.Printf("Drawing %d formulas with %s shaders", len(formulas), drv.Dialect())

	if err := v.run(); err != nil {
		log.Printf("Render loop failed: %v", err)
		os.Exit(1)
	}
}
