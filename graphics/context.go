package graphics

// Context is the host a renderer draws into: a window or an offscreen surface.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the frame and processes pending events.
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	IsGLES() bool
	// ShowMessage shows msg to the user and returns once it is dismissed.
	ShowMessage(msg string)
}
