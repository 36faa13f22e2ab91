package main

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	"github.com/richinsley/gocombiner/cc"
	"github.com/richinsley/gocombiner/options"
	"github.com/richinsley/gocombiner/renderer"
	"github.com/richinsley/gocombiner/shader"
)

const textureSize = 64

var (
	shade  = [4]cc.Operand{cc.OperandZero, cc.OperandZero, cc.OperandZero, cc.OperandInput1}
	decal  = [4]cc.Operand{cc.OperandZero, cc.OperandZero, cc.OperandZero, cc.OperandTexel0}
	modul  = [4]cc.Operand{cc.OperandTexel0, cc.OperandZero, cc.OperandInput1, cc.OperandZero}
	blend  = [4]cc.Operand{cc.OperandTexel0, cc.OperandInput1, cc.OperandInput2, cc.OperandInput1}
	layers = [4]cc.Operand{cc.OperandTexel0, cc.OperandTexel1, cc.OperandInput1, cc.OperandTexel1}
	full   = [4]cc.Operand{cc.OperandInput1, cc.OperandInput2, cc.OperandTexel0, cc.OperandInput3}
	cutout = [4]cc.Operand{cc.OperandZero, cc.OperandZero, cc.OperandZero, cc.OperandTexel0Alpha}
)

// builtinFormulas covers every formula shape and option.
func builtinFormulas() []uint32 {
	return []uint32{
		cc.Encode(shade, shade, 0),
		cc.Encode(decal, decal, 0),
		cc.Encode(modul, modul, cc.OptAlpha),
		cc.Encode(blend, blend, 0),
		cc.Encode(layers, layers, cc.OptAlpha),
		cc.Encode(full, full, 0),
		cc.Encode(cutout, cutout, cc.OptAlpha),
		cc.Encode(modul, shade, cc.OptAlpha),
		cc.Encode(shade, shade, cc.OptFog),
		cc.Encode(decal, decal, cc.OptAlpha|cc.OptTextureEdge),
		cc.Encode(modul, modul, cc.OptAlpha|cc.OptNoise),
		cc.Encode(blend, modul, cc.OptAlpha|cc.OptFog|cc.OptNoise),
	}
}

// formulaSet returns the configured formula ids, or the built in set when
// none are given.
func formulaSet(o options.Options) ([]uint32, error) {
	ids, err := o.FormulaIDs()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return builtinFormulas(), nil
	}
	return ids, nil
}

// triangle order corners of a unit quad as (u, v)
var quadCorners = [6][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}}

// grid returns n clip space rectangles (x0, y0, x1, y1) laid out row by row
// from the top left.
func grid(n int) [][4]float32 {
	if n <= 0 {
		return nil
	}
	cols := int(math32.Ceil(math32.Sqrt(float32(n))))
	rows := (n + cols - 1) / cols
	w, h := 2/float32(cols), 2/float32(rows)
	const margin = 0.04

	rects := make([][4]float32, n)
	for i := range rects {
		x := -1 + float32(i%cols)*w
		y := 1 - float32(i/cols+1)*h
		rects[i] = [4]float32{x + margin, y + margin, x + w - margin, y + h - margin}
	}
	return rects
}

// inputColor animates color input n at quad corner (u, v).
func inputColor(n int, u, v, t float32) [4]float32 {
	phase := float32(n) * 2.1
	return [4]float32{
		0.5 + 0.5*math32.Sin(t+phase+u*math32.Pi),
		0.5 + 0.5*math32.Sin(1.3*t+phase+v*math32.Pi),
		0.5 + 0.5*math32.Cos(0.7*t+phase),
		0.5 + 0.5*math32.Sin(0.5*t+phase+u+v),
	}
}

// appendQuad appends the six vertices of rect laid out as p's attributes.
func appendQuad(buf []float32, p *renderer.Program, rect [4]float32, t float32) []float32 {
	for _, c := range quadCorners {
		for _, a := range p.Attribs {
			switch a.Name {
			case shader.AttribPosition:
				buf = append(buf,
					rect[0]+(rect[2]-rect[0])*c[0],
					rect[1]+(rect[3]-rect[1])*c[1],
					0, 1)
			case shader.AttribTexCoord:
				buf = append(buf, c[0], 1-c[1])
			case shader.AttribFog:
				buf = append(buf, 0.6, 0.7, 0.9, 0.8*c[1])
			default:
				for n := 1; n <= cc.MaxInputs; n++ {
					if a.Name == shader.AttribInput(n) {
						col := inputColor(n, c[0], c[1], t)
						buf = append(buf, col[:a.Size]...)
					}
				}
			}
		}
	}
	return buf
}

// checker is the stage 0 image when no texture file is given. Every other
// dark square is transparent so edge cutout formulas have holes.
func checker(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := size / 8
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			cx, cy := x/cell, y/cell
			c := color.RGBA{240, 240, 240, 255}
			if (cx+cy)%2 == 1 {
				c = color.RGBA{40, 60, 160, 255}
				if cx%2 == 1 {
					c.A = 0
				}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// gradient is the stage 1 image.
func gradient(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 255 / size), 128, uint8(y * 255 / size), uint8(255 - y*255/size)})
		}
	}
	return img
}

// loadTexture decodes an image file and scales it to a size x size RGBA.
func loadTexture(path string, size int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return scaleRGBA(src, size), nil
}

func scaleRGBA(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
