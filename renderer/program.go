package renderer

import "github.com/richinsley/gocombiner/shader"

// Program is a linked shader program for one formula id.
type Program struct {
	ID     uint32
	Handle ProgramHandle

	NumInputs    int
	UsedTextures [2]bool

	Attribs []shader.Attribute
	// Stride is the vertex size in floats.
	Stride int

	// Noise uniform locations, valid only when Noise is set.
	Noise           bool
	FrameCountLoc   int32
	WindowHeightLoc int32
}

// ProgramInfo is what a caller needs to assemble vertices for a program.
type ProgramInfo struct {
	NumInputs    int
	UsedTextures [2]bool
}

func (p *Program) Info() ProgramInfo {
	return ProgramInfo{NumInputs: p.NumInputs, UsedTextures: p.UsedTextures}
}
