// Package cc describes color combiner formulas as the structural feature set
// a shader generator needs: which inputs and texture stages are read, which
// options are active and how each channel's (a-b)*c+d formula is shaped.
package cc

import (
	"errors"
	"fmt"
)

// Operand selects one of the symbolic values a combiner term can read.
type Operand uint8

const (
	OperandZero Operand = iota
	OperandInput1
	OperandInput2
	OperandInput3
	OperandInput4
	OperandTexel0
	// OperandTexel0Alpha is the alpha of texel 0 broadcast to every channel.
	OperandTexel0Alpha
	OperandTexel1

	numOperands
)

// MaxInputs is the number of generic per-vertex color inputs a formula can read.
const MaxInputs = 4

func (o Operand) String() string {
	switch o {
	case OperandZero:
		return "zero"
	case OperandInput1, OperandInput2, OperandInput3, OperandInput4:
		return fmt.Sprintf("input%d", o.Input())
	case OperandTexel0:
		return "texel0"
	case OperandTexel0Alpha:
		return "texel0.alpha"
	case OperandTexel1:
		return "texel1"
	}
	return fmt.Sprintf("Operand(%d)", uint8(o))
}

// IsInput reports whether o reads one of the vertex color inputs.
func (o Operand) IsInput() bool { return o >= OperandInput1 && o <= OperandInput4 }

// Input returns the 1-based input number read by o, or 0 if o is not an input.
func (o Operand) Input() int {
	if !o.IsInput() {
		return 0
	}
	return int(o-OperandInput1) + 1
}

// Stage returns the texture stage sampled by o, or -1.
func (o Operand) Stage() int {
	switch o {
	case OperandTexel0, OperandTexel0Alpha:
		return 0
	case OperandTexel1:
		return 1
	}
	return -1
}

// Shape is the evaluation form of one channel's formula over terms [a,b,c,d].
type Shape uint8

const (
	// ShapeSingle passes d through.
	ShapeSingle Shape = iota
	// ShapeMultiply evaluates a * c.
	ShapeMultiply
	// ShapeMix linearly interpolates from b to a by c.
	ShapeMix
	// ShapeFull evaluates (a - b) * c + d.
	ShapeFull

	numShapes
)

func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "single"
	case ShapeMultiply:
		return "multiply"
	case ShapeMix:
		return "mix"
	case ShapeFull:
		return "full"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// Channel indexes the color and alpha halves of a formula.
const (
	ChannelColor = 0
	ChannelAlpha = 1
)

// Features is the descriptor a shader is generated from.
type Features struct {
	// NumInputs is the count of vertex color inputs, 0..MaxInputs.
	NumInputs    int
	UsedTextures [2]bool

	Fog         bool
	Alpha       bool
	Noise       bool
	TextureEdge bool
	// ColorAlphaSame is set when the color and alpha formulas are identical.
	ColorAlphaSame bool

	Terms  [2][4]Operand
	Shapes [2]Shape
}

// UsesTexture reports whether any texture stage is sampled.
func (f *Features) UsesTexture() bool { return f.UsedTextures[0] || f.UsedTextures[1] }

// UsesNoise reports whether noise dithering takes effect. Dithering only
// modulates alpha so it is inert without an alpha channel.
func (f *Features) UsesNoise() bool { return f.Noise && f.Alpha }

// InputComponents is the component count of each vertex color input.
func (f *Features) InputComponents() int {
	if f.Alpha {
		return 4
	}
	return 3
}

var errMalformed = errors.New("cc: malformed features")

// Validate checks that f can be turned into a shader. Every descriptor produced
// by [Decode] is valid; a hand-built one may not be.
func (f *Features) Validate() error {
	if f.NumInputs < 0 || f.NumInputs > MaxInputs {
		return fmt.Errorf("%w: %d color inputs, want 0..%d", errMalformed, f.NumInputs, MaxInputs)
	}
	for ch := range f.Terms {
		if f.Shapes[ch] >= numShapes {
			return fmt.Errorf("%w: channel %d has %v", errMalformed, ch, f.Shapes[ch])
		}
		for i, op := range f.Terms[ch] {
			if op >= numOperands {
				return fmt.Errorf("%w: channel %d term %d is %v", errMalformed, ch, i, op)
			}
			if !f.termRead(ch, i) {
				continue
			}
			if op.Input() > f.NumInputs {
				return fmt.Errorf("%w: channel %d term %d reads %v with %d inputs", errMalformed, ch, i, op, f.NumInputs)
			}
			if st := op.Stage(); st >= 0 && !f.UsedTextures[st] {
				return fmt.Errorf("%w: channel %d term %d samples unused stage %d", errMalformed, ch, i, st)
			}
		}
	}
	return nil
}

// termRead reports whether term i of channel ch appears in the evaluated formula.
func (f *Features) termRead(ch, i int) bool {
	if ch == ChannelAlpha && !f.separateAlpha() {
		return false
	}
	switch f.Shapes[ch] {
	case ShapeSingle:
		return i == 3
	case ShapeMultiply:
		return i == 0 || i == 2
	case ShapeMix:
		return i <= 2
	}
	return true
}

func (f *Features) separateAlpha() bool { return f.Alpha && !f.ColorAlphaSame }

// Describer yields the features for an opaque formula id.
type Describer interface {
	Describe(id uint32) Features
}

// DescriberFunc adapts a function to [Describer].
type DescriberFunc func(id uint32) Features

func (fn DescriberFunc) Describe(id uint32) Features { return fn(id) }
