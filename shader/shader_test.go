package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gocombiner/cc"
)

var dialects = []Dialect{DialectCg, DialectGLSL410, DialectGLSLES300}

// available lists the operands a descriptor may legally read.
func available(f *cc.Features) []cc.Operand {
	ops := []cc.Operand{cc.OperandZero}
	for i := 1; i <= f.NumInputs; i++ {
		ops = append(ops, cc.OperandInput1+cc.Operand(i-1))
	}
	if f.UsedTextures[0] {
		ops = append(ops, cc.OperandTexel0, cc.OperandTexel0Alpha)
	}
	if f.UsedTextures[1] {
		ops = append(ops, cc.OperandTexel1)
	}
	return ops
}

func eachDescriptor(fn func(f cc.Features)) {
	for n := 0; n <= cc.MaxInputs; n++ {
		for flags := 0; flags < 1<<6; flags++ {
			for shape := cc.ShapeSingle; shape <= cc.ShapeFull; shape++ {
				f := cc.Features{
					NumInputs:    n,
					UsedTextures: [2]bool{flags&1 != 0, flags&2 != 0},
					Fog:          flags&4 != 0,
					Alpha:        flags&8 != 0,
					Noise:        flags&16 != 0,
					TextureEdge:  flags&32 != 0,
				}
				ops := available(&f)
				for i := 0; i < 4; i++ {
					f.Terms[cc.ChannelColor][i] = ops[(i+n+flags)%len(ops)]
					f.Terms[cc.ChannelAlpha][i] = ops[(i+int(shape))%len(ops)]
				}
				f.Shapes = [2]cc.Shape{shape, (shape + 1) % 4}
				f.ColorAlphaSame = f.Terms[0] == f.Terms[1] && f.Shapes[0] == f.Shapes[1]
				fn(f)
			}
		}
	}
}

func balanced(t *testing.T, src string) {
	t.Helper()
	assert.Equal(t, strings.Count(src, "("), strings.Count(src, ")"), src)
	assert.Equal(t, strings.Count(src, "{"), strings.Count(src, "}"), src)
	assert.True(t, strings.HasSuffix(src, "}\n"), src)
	assert.NotContains(t, src, "\n\n")
	assert.NotContains(t, src, ",\n)")
}

func TestGenerateAllDescriptors(t *testing.T) {
	eachDescriptor(func(f cc.Features) {
		tex := 0
		if f.UsesTexture() {
			tex = 1
		}
		fog := 0
		if f.Fog {
			fog = 1
		}
		want := 4 + 2*tex + 4*fog + f.NumInputs*f.InputComponents()

		for _, d := range dialects {
			src, err := Generate(f, d)
			require.NoError(t, err)
			assert.Equal(t, want, src.Stride)
			assert.Len(t, src.Attribs, 1+tex+fog+f.NumInputs)

			sum := 0
			for i, a := range src.Attribs {
				assert.Equal(t, i, a.Slot)
				sum += a.Size
			}
			assert.Equal(t, want, sum)
			assert.Equal(t, f.UsesNoise(), src.Noise)

			balanced(t, src.Vertex)
			balanced(t, src.Fragment)
		}
	})
}

func TestAttributeOrder(t *testing.T) {
	f := cc.Decode(cc.Encode(
		[4]cc.Operand{cc.OperandTexel0, cc.OperandInput1, cc.OperandInput2, cc.OperandInput1},
		[4]cc.Operand{0, 0, 0, cc.OperandInput2},
		cc.OptAlpha|cc.OptFog))
	src, err := Generate(f, DialectGLSL410)
	require.NoError(t, err)
	assert.Equal(t, []Attribute{
		{0, AttribPosition, 4},
		{1, AttribTexCoord, 2},
		{2, AttribFog, 4},
		{3, "aInput1", 4},
		{4, "aInput2", 4},
	}, src.Attribs)
	assert.Contains(t, src.Vertex, "layout(location = 3) in vec4 aInput1;\n")
	assert.Contains(t, src.Vertex, "gl_Position = aVtxPos;\n")
}

func TestTexel0AlphaOnly(t *testing.T) {
	f := cc.Features{
		UsedTextures: [2]bool{true, false},
		Alpha:        true,
		Terms: [2][4]cc.Operand{
			{0, 0, 0, cc.OperandTexel0Alpha},
			{0, 0, 0, cc.OperandTexel0},
		},
	}
	src, err := Generate(f, DialectGLSL410)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment,
		"vec4 texel = vec4(vec3(texel0.a, texel0.a, texel0.a), texel0.a);\n")
	assert.NotContains(t, src.Fragment, "vInput")
	assert.NotContains(t, src.Fragment, "texel0.rgb")
}

func TestMixFormula(t *testing.T) {
	color := [4]cc.Operand{cc.OperandTexel0, cc.OperandInput1, cc.OperandInput2, cc.OperandInput1}
	f := cc.Decode(cc.Encode(color, color, 0))

	src, err := Generate(f, DialectGLSL410)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment, "vec3 texel = mix(vInput1, texel0.rgb, vInput2);\n")

	src, err = Generate(f, DialectCg)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment, "float3 texel = lerp(vInput1, texel0.rgb, vInput2);\n")
}

func TestSeparateAlphaStripsInputs(t *testing.T) {
	color := [4]cc.Operand{cc.OperandInput1, cc.OperandInput2, cc.OperandTexel0Alpha, cc.OperandInput2}
	alpha := [4]cc.Operand{cc.OperandTexel0, cc.OperandZero, cc.OperandInput1, cc.OperandZero}
	f := cc.Decode(cc.Encode(color, alpha, cc.OptAlpha))

	src, err := Generate(f, DialectGLSL410)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment,
		"vec4 texel = vec4(mix(vInput2.rgb, vInput1.rgb, texel0.a), texel0.a * vInput1.a);\n")
}

func TestSingleTexelNoAlpha(t *testing.T) {
	f := cc.Features{
		NumInputs:    1,
		UsedTextures: [2]bool{true, false},
		Terms:        [2][4]cc.Operand{{0, 0, 0, cc.OperandTexel0}},
	}
	src, err := Generate(f, DialectCg)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(src.Fragment, "tex2D("))
	assert.Contains(t, src.Fragment, "float4 texel0 = tex2D(uTex0, vTexCoord);\n")
	assert.Contains(t, src.Fragment, "float3 texel = texel0.rgb;\n")
	assert.Contains(t, src.Fragment, "return float4(texel, 1.0);\n")
	assert.NotContains(t, src.Fragment, "uTex1")
	assert.Contains(t, src.Vertex, "float3 out vInput1 : TEXCOORD1")
}

func TestFogPreservesAlpha(t *testing.T) {
	color := [4]cc.Operand{0, 0, 0, cc.OperandInput1}
	f := cc.Decode(cc.Encode(color, color, cc.OptAlpha|cc.OptFog))

	src, err := Generate(f, DialectGLSL410)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment, "texel = vec4(mix(texel.rgb, vFog.rgb, vFog.a), texel.a);\n")
	assert.Contains(t, src.Fragment, "fragColor = texel;\n")

	src, err = Generate(f, DialectCg)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment, "texel = float4(lerp(texel.rgb, vFog.rgb, vFog.a), texel.a);\n")

	f = cc.Decode(cc.Encode(color, color, cc.OptFog))
	src, err = Generate(f, DialectGLSL410)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment, "texel = mix(texel, vFog.rgb, vFog.a);\n")
}

func TestPostProcessOrder(t *testing.T) {
	color := [4]cc.Operand{0, 0, 0, cc.OperandTexel0}
	f := cc.Decode(cc.Encode(color, color, cc.OptAlpha|cc.OptFog|cc.OptTextureEdge|cc.OptNoise))

	for _, d := range dialects {
		src, err := Generate(f, d)
		require.NoError(t, err)
		edge := strings.Index(src.Fragment, "if (texel.a > 0.3) texel.a = 1.0; else discard;")
		fog := strings.Index(src.Fragment, "vFog.a)")
		noise := strings.Index(src.Fragment, "texel.a *= floor(random(")
		require.True(t, edge > 0 && fog > 0 && noise > 0, d.String())
		assert.Less(t, edge, fog)
		assert.Less(t, fog, noise)
	}
}

func TestNoiseUniforms(t *testing.T) {
	color := [4]cc.Operand{0, 0, 0, cc.OperandInput1}

	f := cc.Decode(cc.Encode(color, color, cc.OptAlpha|cc.OptNoise))
	src, err := Generate(f, DialectGLSLES300)
	require.NoError(t, err)
	assert.True(t, src.Noise)
	assert.True(t, strings.HasPrefix(src.Fragment, "#version 300 es\n"))
	assert.Contains(t, src.Fragment, "uniform int uFrameCount;\n")
	assert.Contains(t, src.Fragment, "uniform int uWindowHeight;\n")
	assert.Contains(t, src.Fragment, "return fract(sin(r) * 143758.5453);\n")
	assert.Contains(t, src.Fragment,
		"texel.a *= floor(random(vec3(floor(fragCoord * (240.0 / float(uWindowHeight))), float(uFrameCount))) + 0.5);\n")

	src, err = Generate(f, DialectCg)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment, "float2 fragCoord : WPOS")
	assert.Contains(t, src.Fragment, "return frac(sin(r) * 143758.5453);\n")

	// Noise without alpha has nothing to dither.
	f = cc.Decode(cc.Encode(color, color, cc.OptNoise))
	src, err = Generate(f, DialectGLSL410)
	require.NoError(t, err)
	assert.False(t, src.Noise)
	assert.NotContains(t, src.Fragment, UniformFrameCount)
	assert.NotContains(t, src.Fragment, "random")
}

func TestGenerateRejectsMalformed(t *testing.T) {
	f := cc.Features{NumInputs: 1, Terms: [2][4]cc.Operand{{0, 0, 0, cc.OperandTexel1}}}
	_, err := Generate(f, DialectGLSL410)
	assert.Error(t, err)

	_, err = Generate(cc.Features{}, Dialect(42))
	assert.Error(t, err)
}

func TestGenerateDeterministic(t *testing.T) {
	f := cc.Decode(0x0f_123456)
	a, err := Generate(f, DialectCg)
	require.NoError(t, err)
	b, err := Generate(f, DialectCg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseDialect(t *testing.T) {
	for _, d := range dialects {
		got, err := ParseDialect(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDialect("hlsl")
	assert.Error(t, err)
}

// splitArgs splits a call's argument list on top level commas.
func splitArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

func TestMixMatchesEvaluate(t *testing.T) {
	v := &cc.Values{
		Inputs: [cc.MaxInputs][4]float32{{0.2, 0.4, 0.6, 0.5}, {0.9, 0.1, 0.3, 0.7}},
		Texel0: [4]float32{0.25, 0.5, 0.75, 0.4},
		Texel1: [4]float32{0.8, 0.6, 0.2, 0.9},
	}
	bcast := func(x float32) [4]float32 { return [4]float32{x, x, x, x} }
	values := map[string][4]float32{
		"vInput1":    v.Inputs[0],
		"vInput2":    v.Inputs[1],
		"texel0.rgb": v.Texel0,
		"texel1.rgb": v.Texel1,
		"texel0.a":   bcast(v.Texel0[3]),
	}

	formulas := [][4]cc.Operand{
		{cc.OperandTexel0, cc.OperandInput1, cc.OperandInput2, cc.OperandInput1},
		{cc.OperandInput2, cc.OperandInput1, cc.OperandTexel0, cc.OperandInput1},
		{cc.OperandTexel1, cc.OperandTexel0, cc.OperandInput1, cc.OperandTexel0},
		{cc.OperandInput1, cc.OperandTexel1, cc.OperandTexel0Alpha, cc.OperandTexel1},
	}
	const prefix = "vec3 texel = mix("
	for _, color := range formulas {
		f := cc.Decode(cc.Encode(color, color, 0))
		require.Equal(t, cc.ShapeMix, f.Shapes[cc.ChannelColor])
		src, err := Generate(f, DialectGLSL410)
		require.NoError(t, err)

		i := strings.Index(src.Fragment, prefix)
		require.GreaterOrEqual(t, i, 0, src.Fragment)
		line := src.Fragment[i+len(prefix):]
		line = line[:strings.Index(line, ");\n")]
		args := splitArgs(line)
		require.Len(t, args, 3, line)

		want, keep := f.Evaluate(v)
		require.True(t, keep)
		for ch := 0; ch < 3; ch++ {
			x, ok := values[args[0]]
			require.True(t, ok, args[0])
			y, ok := values[args[1]]
			require.True(t, ok, args[1])
			a, ok := values[args[2]]
			require.True(t, ok, args[2])
			got := x[ch]*(1-a[ch]) + y[ch]*a[ch]
			assert.InDelta(t, want[ch], got, 1e-6, "%v channel %d: %s", color, ch, line)
		}
		assert.Equal(t, float32(1), want[3])
	}
}
