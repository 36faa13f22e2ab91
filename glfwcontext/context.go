package glfwcontext

import (
	"log"
	"runtime"
	"strings"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/gocombiner/graphics"
)

var _ graphics.Context = (*Context)(nil)

type Context struct {
	window *glfw.Window
	title  string
	// keyCallbacks run when their key is pressed.
	keyCallbacks map[glfw.Key]func()
	// dismissed is set by any key press while a message is shown.
	dismissed bool
	showing   bool
}

// New creates a window with an OpenGL 4.1 core context.
func New(width, height int, title string, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		title:        title,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	return c, nil
}

// RegisterKeyCallback runs f whenever key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if c.showing {
		c.dismissed = true
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
	}
	if callback, ok := c.keyCallbacks[key]; ok {
		callback()
	}
}

// ShowMessage puts msg in the title bar and blocks until a key is pressed
// or the window is closed.
func (c *Context) ShowMessage(msg string) {
	log.Print(msg)
	first, _, _ := strings.Cut(msg, "\n")
	c.window.SetTitle(first + " (press any key)")
	c.window.Show()

	c.showing, c.dismissed = true, false
	for !c.dismissed && !c.window.ShouldClose() {
		glfw.WaitEvents()
	}
	c.showing = false
	c.window.SetTitle(c.title)
}

func (c *Context) IsGLES() bool { return false }

func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// DetachCurrent makes no context current on the calling thread.
func (c *Context) DetachCurrent() {
	glfw.DetachCurrentContext()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down GLFW. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
