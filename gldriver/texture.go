package gldriver

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/gocombiner/renderer"
)

func (d *Driver) NewTexture() renderer.TextureHandle {
	var id uint32
	gl.GenTextures(1, &id)
	return renderer.TextureHandle(id)
}

func (d *Driver) BindTexture(stage int, t renderer.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(stage))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (d *Driver) UploadTexture(rgba []byte, width, height int) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
}

func (d *Driver) SetSampler(stage int, linear bool, s, t renderer.WrapMode) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(stage))
	filter := filterMode(linear)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(s))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(t))
}

func wrapMode(w renderer.WrapMode) int32 {
	switch w {
	case renderer.WrapClamp:
		return gl.CLAMP_TO_EDGE
	case renderer.WrapMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

func filterMode(linear bool) int32 {
	if linear {
		return gl.LINEAR
	}
	return gl.NEAREST
}
