package cc

// Values holds what each operand resolves to for a single fragment.
type Values struct {
	Inputs [MaxInputs][4]float32
	Texel0 [4]float32
	Texel1 [4]float32
	// Fog is the fog color in rgb and the fog blend factor in a.
	Fog [4]float32
}

func (v *Values) operand(op Operand) [4]float32 {
	switch op {
	case OperandInput1, OperandInput2, OperandInput3, OperandInput4:
		return v.Inputs[op.Input()-1]
	case OperandTexel0:
		return v.Texel0
	case OperandTexel0Alpha:
		a := v.Texel0[3]
		return [4]float32{a, a, a, a}
	case OperandTexel1:
		return v.Texel1
	}
	return [4]float32{}
}

// Evaluate computes the fragment color f produces for v on the CPU, following
// the same evaluation order as the generated fragment shader up to but not
// including noise dithering, which depends on screen position. keep is false
// when the texture edge test discards the fragment.
func (f *Features) Evaluate(v *Values) (rgba [4]float32, keep bool) {
	var t [4][4]float32
	for i, op := range f.Terms[ChannelColor] {
		t[i] = v.operand(op)
	}
	for i := 0; i < 4; i++ {
		rgba[i] = apply(f.Shapes[ChannelColor], t[0][i], t[1][i], t[2][i], t[3][i])
	}
	switch {
	case !f.Alpha:
		rgba[3] = 1
	case !f.ColorAlphaSame:
		var a [4]float32
		for i, op := range f.Terms[ChannelAlpha] {
			a[i] = v.operand(op)[3]
		}
		rgba[3] = apply(f.Shapes[ChannelAlpha], a[0], a[1], a[2], a[3])
	}

	if f.TextureEdge && f.Alpha {
		if rgba[3] <= 0.3 {
			return rgba, false
		}
		rgba[3] = 1
	}
	if f.Fog {
		for i := 0; i < 3; i++ {
			rgba[i] = mixf(rgba[i], v.Fog[i], v.Fog[3])
		}
	}
	return rgba, true
}

func apply(s Shape, a, b, c, d float32) float32 {
	switch s {
	case ShapeSingle:
		return d
	case ShapeMultiply:
		return a * c
	case ShapeMix:
		return mixf(b, a, c)
	}
	return (a-b)*c + d
}

// mixf matches GLSL mix and Cg lerp.
func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}
