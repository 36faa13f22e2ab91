package shader

import (
	"fmt"
	"strings"
)

// Dialect selects the shading language the generator emits.
type Dialect int

const (
	// DialectCg is the Cg flavour accepted by vitaGL's runtime compiler.
	DialectCg Dialect = iota
	DialectGLSL410
	DialectGLSLES300
)

func (d Dialect) String() string {
	switch d {
	case DialectCg:
		return "cg"
	case DialectGLSL410:
		return "glsl410"
	case DialectGLSLES300:
		return "glsles300"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// ParseDialect accepts the names printed by [Dialect.String].
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "cg":
		return DialectCg, nil
	case "glsl410", "glsl", "gl":
		return DialectGLSL410, nil
	case "glsles300", "essl", "gles":
		return DialectGLSLES300, nil
	}
	return 0, fmt.Errorf("shader: unknown dialect %q", s)
}

// lang holds the spelling differences between dialects.
type lang struct {
	cg      bool
	header  string
	vec     [5]string
	mix     string
	fract   string
	sample  string
	fragOut string
}

var langs = map[Dialect]*lang{
	DialectCg: {
		cg:     true,
		vec:    [5]string{2: "float2", 3: "float3", 4: "float4"},
		mix:    "lerp",
		fract:  "frac",
		sample: "tex2D",
	},
	DialectGLSL410: {
		header:  "#version 410 core\n",
		vec:     [5]string{2: "vec2", 3: "vec3", 4: "vec4"},
		mix:     "mix",
		fract:   "fract",
		sample:  "texture",
		fragOut: "fragColor",
	},
	DialectGLSLES300: {
		header:  "#version 300 es\nprecision highp float;\n",
		vec:     [5]string{2: "vec2", 3: "vec3", 4: "vec4"},
		mix:     "mix",
		fract:   "fract",
		sample:  "texture",
		fragOut: "fragColor",
	},
}

func (d Dialect) lang() (*lang, error) {
	l, ok := langs[d]
	if !ok {
		return nil, fmt.Errorf("shader: unsupported %v", d)
	}
	return l, nil
}
