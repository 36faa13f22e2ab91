//go:build linux

package headless

/*
#cgo LDFLAGS: -lEGL
#include <EGL/egl.h>
#include <EGL/eglext.h>

// open_display returns the display of the first EGL device that has one, or
// the default display when device enumeration is unavailable. *device is the
// index used, -1 for the default display.
static EGLDisplay open_display(int *device) {
	PFNEGLQUERYDEVICESEXTPROC query =
		(PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
	PFNEGLGETPLATFORMDISPLAYEXTPROC platform =
		(PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
	*device = -1;
	if (query && platform) {
		EGLDeviceEXT devices[8];
		EGLint n = 0;
		if (query(8, devices, &n)) {
			for (EGLint i = 0; i < n; i++) {
				EGLDisplay d = platform(EGL_PLATFORM_DEVICE_EXT, devices[i], NULL);
				if (d != EGL_NO_DISPLAY) {
					*device = i;
					return d;
				}
			}
		}
	}
	return eglGetDisplay(EGL_DEFAULT_DISPLAY);
}
*/
import "C"

import (
	"fmt"
	"log"
	"time"

	"github.com/richinsley/gocombiner/graphics"
)

var _ graphics.Context = (*Headless)(nil)

// Headless is an OpenGL ES 3 context on an EGL pbuffer surface.
type Headless struct {
	display C.EGLDisplay
	context C.EGLContext
	surface C.EGLSurface

	width, height int
	start         time.Time
}

func eglError(op string) error {
	return fmt.Errorf("headless: %s failed: egl error %#x", op, int(C.eglGetError()))
}

// NewHeadless creates a width x height offscreen surface and makes its
// context current. GL entry points are loaded later by the driver.
func NewHeadless(width, height int) (*Headless, error) {
	h := &Headless{width: width, height: height, start: time.Now()}

	var device C.int
	h.display = C.open_display(&device)
	if h.display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
		return nil, eglError("open display")
	}
	var major, minor C.EGLint
	if C.eglInitialize(h.display, &major, &minor) == C.EGL_FALSE {
		return nil, eglError("eglInitialize")
	}
	log.Printf("headless: EGL %d.%d on device %d", major, minor, device)

	configAttribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_PBUFFER_BIT,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES3_BIT,
		C.EGL_RED_SIZE, 8, C.EGL_GREEN_SIZE, 8, C.EGL_BLUE_SIZE, 8, C.EGL_ALPHA_SIZE, 8,
		C.EGL_DEPTH_SIZE, 24,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var n C.EGLint
	if C.eglChooseConfig(h.display, &configAttribs[0], &config, 1, &n) == C.EGL_FALSE || n == 0 {
		h.Shutdown()
		return nil, eglError("eglChooseConfig")
	}

	surfaceAttribs := []C.EGLint{C.EGL_WIDTH, C.EGLint(width), C.EGL_HEIGHT, C.EGLint(height), C.EGL_NONE}
	h.surface = C.eglCreatePbufferSurface(h.display, config, &surfaceAttribs[0])
	if h.surface == C.EGLSurface(C.EGL_NO_SURFACE) {
		h.Shutdown()
		return nil, eglError("eglCreatePbufferSurface")
	}

	contextAttribs := []C.EGLint{C.EGL_CONTEXT_CLIENT_VERSION, 3, C.EGL_NONE}
	h.context = C.eglCreateContext(h.display, config, C.EGLContext(C.EGL_NO_CONTEXT), &contextAttribs[0])
	if h.context == C.EGLContext(C.EGL_NO_CONTEXT) {
		h.Shutdown()
		return nil, eglError("eglCreateContext")
	}
	if C.eglMakeCurrent(h.display, h.surface, h.surface, h.context) == C.EGL_FALSE {
		h.Shutdown()
		return nil, eglError("eglMakeCurrent")
	}
	return h, nil
}

func (h *Headless) MakeCurrent() {
	C.eglMakeCurrent(h.display, h.surface, h.surface, h.context)
}

func (h *Headless) ShouldClose() bool              { return false }
func (h *Headless) EndFrame()                      { C.eglSwapBuffers(h.display, h.surface) }
func (h *Headless) GetFramebufferSize() (int, int) { return h.width, h.height }
func (h *Headless) Time() float64                  { return time.Since(h.start).Seconds() }
func (h *Headless) IsGLES() bool                   { return true }

// ShowMessage logs msg; there is nobody to dismiss it.
func (h *Headless) ShowMessage(msg string) { log.Print(msg) }

func (h *Headless) Shutdown() {
	none := C.EGLSurface(C.EGL_NO_SURFACE)
	C.eglMakeCurrent(h.display, none, none, C.EGLContext(C.EGL_NO_CONTEXT))
	if h.context != C.EGLContext(C.EGL_NO_CONTEXT) {
		C.eglDestroyContext(h.display, h.context)
	}
	if h.surface != none {
		C.eglDestroySurface(h.display, h.surface)
	}
	C.eglTerminate(h.display)
}
