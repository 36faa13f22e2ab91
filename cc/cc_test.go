package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTrip(t *testing.T) {
	color := [4]Operand{OperandTexel0, OperandZero, OperandInput1, OperandZero}
	alpha := [4]Operand{OperandZero, OperandZero, OperandZero, OperandInput2}
	id := Encode(color, alpha, OptAlpha|OptFog)

	f := Decode(id)
	assert.Equal(t, color, f.Terms[ChannelColor])
	assert.Equal(t, alpha, f.Terms[ChannelAlpha])
	assert.True(t, f.Alpha)
	assert.True(t, f.Fog)
	assert.False(t, f.Noise)
	assert.False(t, f.TextureEdge)
	assert.Equal(t, 2, f.NumInputs)
	assert.Equal(t, [2]bool{true, false}, f.UsedTextures)
	assert.Equal(t, ShapeMultiply, f.Shapes[ChannelColor])
	assert.Equal(t, ShapeSingle, f.Shapes[ChannelAlpha])
	assert.False(t, f.ColorAlphaSame)
	require.NoError(t, f.Validate())
}

func TestShapePriority(t *testing.T) {
	tests := []struct {
		terms [4]Operand
		want  Shape
	}{
		{[4]Operand{OperandInput1, OperandInput2, OperandZero, OperandTexel0}, ShapeSingle},
		// b == d == 0 satisfies both multiply and mix; multiply wins.
		{[4]Operand{OperandTexel0, OperandZero, OperandInput1, OperandZero}, ShapeMultiply},
		{[4]Operand{OperandTexel0, OperandInput1, OperandInput2, OperandInput1}, ShapeMix},
		{[4]Operand{OperandTexel0, OperandInput1, OperandInput2, OperandInput3}, ShapeFull},
		{[4]Operand{OperandTexel0, OperandZero, OperandInput2, OperandInput3}, ShapeFull},
	}
	for _, test := range tests {
		f := Decode(Encode(test.terms, test.terms, 0))
		assert.Equal(t, test.want, f.Shapes[ChannelColor], "terms %v", test.terms)
		assert.True(t, f.ColorAlphaSame)
	}
}

func TestDecodeTextureStages(t *testing.T) {
	f := Decode(Encode([4]Operand{}, [4]Operand{0, 0, 0, OperandTexel0Alpha}, 0))
	assert.Equal(t, [2]bool{true, false}, f.UsedTextures)

	f = Decode(Encode([4]Operand{0, 0, 0, OperandTexel1}, [4]Operand{}, 0))
	assert.Equal(t, [2]bool{false, true}, f.UsedTextures)
	assert.Equal(t, 0, f.NumInputs)
}

func TestValidate(t *testing.T) {
	good := Decode(Encode([4]Operand{0, 0, 0, OperandInput1}, [4]Operand{0, 0, 0, OperandInput1}, 0))
	require.NoError(t, good.Validate())

	tests := map[string]func(f *Features){
		"too many inputs":  func(f *Features) { f.NumInputs = 5 },
		"negative inputs":  func(f *Features) { f.NumInputs = -1 },
		"unknown operand":  func(f *Features) { f.Terms[ChannelColor][3] = numOperands },
		"unknown shape":    func(f *Features) { f.Shapes[ChannelColor] = numShapes },
		"input not wired":  func(f *Features) { f.Terms[ChannelColor][3] = OperandInput3 },
		"stage not in use": func(f *Features) { f.Terms[ChannelColor][3] = OperandTexel1 },
	}
	for name, mutate := range tests {
		f := good
		mutate(&f)
		assert.ErrorIs(t, f.Validate(), errMalformed, name)
	}
}

func TestValidateIgnoresUnreadTerms(t *testing.T) {
	// a and b are not read by a single-term formula.
	f := Features{
		NumInputs: 1,
		Terms:     [2][4]Operand{{OperandTexel1, OperandInput4, OperandZero, OperandInput1}},
		Shapes:    [2]Shape{ShapeSingle, ShapeSingle},
	}
	assert.NoError(t, f.Validate())
}

func TestEvaluateMixIdentity(t *testing.T) {
	// A = texel0, B = input1, C = input2: result is B + (A-B)*C.
	color := [4]Operand{OperandTexel0, OperandInput1, OperandInput2, OperandInput1}
	f := Decode(Encode(color, color, 0))
	require.Equal(t, ShapeMix, f.Shapes[ChannelColor])

	v := Values{
		Texel0: [4]float32{0.8, 0.2, 0.6, 1},
		Inputs: [MaxInputs][4]float32{
			{0.1, 0.5, 0.9, 1},
			{0.25, 0.5, 0.75, 1},
		},
	}
	got, keep := f.Evaluate(&v)
	require.True(t, keep)
	for i := 0; i < 3; i++ {
		a, b, c := v.Texel0[i], v.Inputs[0][i], v.Inputs[1][i]
		assert.InDelta(t, b+(a-b)*c, got[i], 1e-6)
	}
	assert.Equal(t, float32(1), got[3])
}

func TestEvaluateSeparateAlphaAndEdge(t *testing.T) {
	color := [4]Operand{0, 0, 0, OperandInput1}
	alpha := [4]Operand{OperandTexel0, OperandZero, OperandInput1, OperandZero}
	f := Decode(Encode(color, alpha, OptAlpha|OptTextureEdge))
	v := Values{
		Texel0: [4]float32{0, 0, 0, 0.5},
		Inputs: [MaxInputs][4]float32{{0.3, 0.4, 0.5, 0.8}},
	}
	got, keep := f.Evaluate(&v)
	require.True(t, keep, "0.5*0.8 is above the edge threshold")
	assert.Equal(t, [4]float32{0.3, 0.4, 0.5, 1}, got)

	v.Texel0[3] = 0.25
	_, keep = f.Evaluate(&v)
	assert.False(t, keep)
}

func TestEvaluateFogKeepsAlpha(t *testing.T) {
	color := [4]Operand{0, 0, 0, OperandInput1}
	f := Decode(Encode(color, color, OptAlpha|OptFog))
	v := Values{
		Inputs: [MaxInputs][4]float32{{1, 1, 1, 0.5}},
		Fog:    [4]float32{0, 0, 0, 0.25},
	}
	got, _ := f.Evaluate(&v)
	assert.InDeltaSlice(t, []float32{0.75, 0.75, 0.75, 0.5}, got[:], 1e-6)
}
