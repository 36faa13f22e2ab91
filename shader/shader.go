// Package shader turns a combiner feature descriptor into vertex and fragment
// shader source for one of several shading languages.
package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/richinsley/gocombiner/cc"
)

// Names shared between generated source and the code that binds it.
const (
	AttribPosition = "aVtxPos"
	AttribTexCoord = "aTexCoord"
	AttribFog      = "aFog"

	UniformFrameCount   = "uFrameCount"
	UniformWindowHeight = "uWindowHeight"
)

// AttribInput returns the attribute name of the 1-based color input n.
func AttribInput(n int) string { return "aInput" + strconv.Itoa(n) }

// SamplerName returns the sampler uniform for texture stage st.
func SamplerName(st int) string { return "uTex" + strconv.Itoa(st) }

// Attribute is one vertex input bound to a fixed slot.
type Attribute struct {
	Slot int
	Name string
	// Size is the component count in floats.
	Size int
}

// Source is the output of [Generate].
type Source struct {
	Dialect  Dialect
	Vertex   string
	Fragment string

	// Attribs are in slot order: position, texcoord, fog, then inputs.
	Attribs []Attribute
	// Stride is the interleaved vertex size in floats.
	Stride int

	Textures [2]bool
	// Noise is set when the fragment shader declares the frame count and
	// window height uniforms.
	Noise bool
}

// Generate builds shader source for f in dialect d. It fails only when f does
// not pass [cc.Features.Validate] or d is unknown.
func Generate(f cc.Features, d Dialect) (Source, error) {
	l, err := d.lang()
	if err != nil {
		return Source{}, err
	}
	if err := f.Validate(); err != nil {
		return Source{}, fmt.Errorf("shader: generate: %w", err)
	}

	g := &generator{f: &f, l: l}
	g.layout()
	src := Source{
		Dialect:  d,
		Vertex:   string(g.appendVertex(nil)),
		Fragment: string(g.appendFragment(nil)),
		Attribs:  g.attribs,
		Stride:   g.stride,
		Textures: f.UsedTextures,
		Noise:    f.UsesNoise(),
	}
	return src, nil
}

// varying pairs a vertex attribute with the value it forwards to the
// fragment stage.
type varying struct {
	attr Attribute
	out  string
}

type generator struct {
	f *cc.Features
	l *lang

	varyings []varying
	attribs  []Attribute
	stride   int
}

func (g *generator) layout() {
	add := func(name, out string, size int) {
		a := Attribute{Slot: len(g.attribs), Name: name, Size: size}
		g.attribs = append(g.attribs, a)
		g.stride += size
		if out != "" {
			g.varyings = append(g.varyings, varying{attr: a, out: out})
		}
	}
	add(AttribPosition, "", 4)
	if g.f.UsesTexture() {
		add(AttribTexCoord, "vTexCoord", 2)
	}
	if g.f.Fog {
		add(AttribFog, "vFog", 4)
	}
	for i := 1; i <= g.f.NumInputs; i++ {
		add(AttribInput(i), "vInput"+strconv.Itoa(i), g.f.InputComponents())
	}
}

// ─────────────────────────────────── Vertex ────────────────────────────────────

func (g *generator) appendVertex(b []byte) []byte {
	l := g.l
	if l.cg {
		params := []string{l.vec[4] + " " + AttribPosition}
		for i, v := range g.varyings {
			t := l.vec[v.attr.Size]
			params = append(params,
				t+" "+v.attr.Name,
				fmt.Sprintf("%s out %s : TEXCOORD%d", t, v.out, i))
		}
		b = append(b, "float4 main(\n"...)
		b = appendParams(b, params)
		b = append(b, ") : POSITION\n{\n"...)
	} else {
		b = append(b, l.header...)
		b = appendIn(b, l, g.attribs[0])
		for _, v := range g.varyings {
			b = appendIn(b, l, v.attr)
			b = fmt.Appendf(b, "out %s %s;\n", l.vec[v.attr.Size], v.out)
		}
		b = append(b, "void main() {\n"...)
	}
	for _, v := range g.varyings {
		b = fmt.Appendf(b, "%s = %s;\n", v.out, v.attr.Name)
	}
	if l.cg {
		b = append(b, "return "+AttribPosition+";\n"...)
	} else {
		b = append(b, "gl_Position = "+AttribPosition+";\n"...)
	}
	return append(b, "}\n"...)
}

func appendIn(b []byte, l *lang, a Attribute) []byte {
	return fmt.Appendf(b, "layout(location = %d) in %s %s;\n", a.Slot, l.vec[a.Size], a.Name)
}

func appendParams(b []byte, params []string) []byte {
	return append(b, strings.Join(params, ",\n")+"\n"...)
}

// ────────────────────────────────── Fragment ───────────────────────────────────

func (g *generator) appendFragment(b []byte) []byte {
	l, f := g.l, g.f
	noise := f.UsesNoise()
	v3, v4 := l.vec[3], l.vec[4]

	b = append(b, l.header...)
	if noise {
		b = fmt.Appendf(b, "float random(%s value) {\n", v3)
		b = fmt.Appendf(b, "    float r = dot(sin(value), %s(12.9898, 78.233, 37.719));\n", v3)
		b = fmt.Appendf(b, "    return %s(sin(r) * 143758.5453);\n", l.fract)
		b = append(b, "}\n"...)
	}

	if l.cg {
		var params []string
		for i, v := range g.varyings {
			params = append(params, fmt.Sprintf("%s %s : TEXCOORD%d", l.vec[v.attr.Size], v.out, i))
		}
		for st, used := range f.UsedTextures {
			if used {
				params = append(params, fmt.Sprintf("uniform sampler2D %s : TEXUNIT%d", SamplerName(st), st))
			}
		}
		if noise {
			params = append(params,
				"uniform int "+UniformFrameCount,
				"uniform int "+UniformWindowHeight,
				"float2 fragCoord : WPOS")
		}
		b = append(b, "float4 main(\n"...)
		if len(params) > 0 {
			b = appendParams(b, params)
		}
		b = append(b, ") : COLOR\n{\n"...)
	} else {
		for _, v := range g.varyings {
			b = fmt.Appendf(b, "in %s %s;\n", l.vec[v.attr.Size], v.out)
		}
		for st, used := range f.UsedTextures {
			if used {
				b = fmt.Appendf(b, "uniform sampler2D %s;\n", SamplerName(st))
			}
		}
		if noise {
			b = append(b, "uniform int "+UniformFrameCount+";\n"...)
			b = append(b, "uniform int "+UniformWindowHeight+";\n"...)
		}
		b = fmt.Appendf(b, "out vec4 %s;\n", l.fragOut)
		b = append(b, "void main() {\n"...)
		if noise {
			b = append(b, "vec2 fragCoord = gl_FragCoord.xy;\n"...)
		}
	}

	for st, used := range f.UsedTextures {
		if used {
			b = fmt.Appendf(b, "%s texel%d = %s(%s, vTexCoord);\n", v4, st, l.sample, SamplerName(st))
		}
	}

	if f.Alpha {
		b = append(b, v4+" texel = "...)
	} else {
		b = append(b, v3+" texel = "...)
	}
	if f.Alpha && !f.ColorAlphaSame {
		b = append(b, v4+"("...)
		b = g.appendFormula(b, cc.ChannelColor, mode{inputsHaveAlpha: true})
		b = append(b, ", "...)
		b = g.appendFormula(b, cc.ChannelAlpha, mode{withAlpha: true, onlyAlpha: true, inputsHaveAlpha: true})
		b = append(b, ')')
	} else {
		b = g.appendFormula(b, cc.ChannelColor, mode{withAlpha: f.Alpha, inputsHaveAlpha: f.Alpha})
	}
	b = append(b, ";\n"...)

	if f.TextureEdge && f.Alpha {
		b = append(b, "if (texel.a > 0.3) texel.a = 1.0; else discard;\n"...)
	}
	if f.Fog {
		if f.Alpha {
			b = fmt.Appendf(b, "texel = %s(%s(texel.rgb, vFog.rgb, vFog.a), texel.a);\n", v4, l.mix)
		} else {
			b = fmt.Appendf(b, "texel = %s(texel, vFog.rgb, vFog.a);\n", l.mix)
		}
	}
	if noise {
		b = fmt.Appendf(b, "texel.a *= floor(random(%s(floor(fragCoord * (240.0 / float(%s))), float(%s))) + 0.5);\n",
			v3, UniformWindowHeight, UniformFrameCount)
	}

	out := "texel"
	if !f.Alpha {
		out = v4 + "(texel, 1.0)"
	}
	if l.cg {
		b = append(b, "return "+out+";\n"...)
	} else {
		b = append(b, l.fragOut+" = "+out+";\n"...)
	}
	return append(b, "}\n"...)
}

// mode controls how an operand is spelled inside a formula.
type mode struct {
	// withAlpha is set when the formula yields four components.
	withAlpha bool
	// onlyAlpha reduces every operand to its alpha component.
	onlyAlpha bool
	// inputsHaveAlpha is set when vertex inputs carry four components.
	inputsHaveAlpha bool
}

func (g *generator) appendFormula(b []byte, ch int, m mode) []byte {
	t := &g.f.Terms[ch]
	term := func(i int) string { return g.operand(t[i], m, i == 2) }
	switch g.f.Shapes[ch] {
	case cc.ShapeSingle:
		b = append(b, term(3)...)
	case cc.ShapeMultiply:
		b = append(b, term(0)+" * "+term(2)...)
	case cc.ShapeMix:
		b = append(b, g.l.mix+"("+term(1)+", "+term(0)+", "+term(2)+")"...)
	default:
		b = append(b, "("+term(0)+" - "+term(1)+") * "+term(2)+" + "+term(3)...)
	}
	return b
}

// operand spells op under m. single is set for a multiplier position where a
// scalar broadcasts as well as a vector would.
func (g *generator) operand(op cc.Operand, m mode, single bool) string {
	if m.onlyAlpha {
		switch op {
		case cc.OperandZero:
			return "0.0"
		case cc.OperandTexel0, cc.OperandTexel0Alpha:
			return "texel0.a"
		case cc.OperandTexel1:
			return "texel1.a"
		}
		return fmt.Sprintf("vInput%d.a", op.Input())
	}

	n := 3
	if m.withAlpha {
		n = 4
	}
	vec := g.l.vec[n]
	switch op {
	case cc.OperandZero:
		return vec + "(" + strings.TrimSuffix(strings.Repeat("0.0, ", n), ", ") + ")"
	case cc.OperandTexel0Alpha:
		if single {
			return "texel0.a"
		}
		return vec + "(" + strings.TrimSuffix(strings.Repeat("texel0.a, ", n), ", ") + ")"
	case cc.OperandTexel0, cc.OperandTexel1:
		s := "texel" + strconv.Itoa(op.Stage())
		if !m.withAlpha {
			s += ".rgb"
		}
		return s
	}
	s := fmt.Sprintf("vInput%d", op.Input())
	if !m.withAlpha && m.inputsHaveAlpha {
		s += ".rgb"
	}
	return s
}
