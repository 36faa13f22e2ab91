package renderer

// RenderingAPI is the function table a higher level display list renderer
// drives each frame. Methods cannot fail; defects are routed to
// Options.Fatal.
type RenderingAPI interface {
	ZIsFrom0To1() bool
	UnloadShader(old *Program)
	LoadShader(p *Program)
	CreateAndLoadNewShader(id uint32) *Program
	LookupShader(id uint32) *Program
	ShaderGetInfo(p *Program) (numInputs int, usedTextures [2]bool)
	NewTexture() TextureHandle
	SelectTexture(stage int, t TextureHandle)
	UploadTexture(rgba []byte, width, height int)
	SetSamplerParameters(stage int, linear bool, cms, cmt uint32)
	SetDepthTest(on bool)
	SetDepthMask(on bool)
	SetZmodeDecal(on bool)
	SetViewport(x, y, width, height int)
	SetScissor(x, y, width, height int)
	SetUseAlpha(on bool)
	DrawTriangles(buf []float32, numTris int)
	Init()
	OnResize()
	StartFrame()
	EndFrame()
	FinishRender()
}

var _ RenderingAPI = (*Renderer)(nil)
