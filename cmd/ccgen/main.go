// Command ccgen prints the shaders generated for packed combiner formula ids.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/richinsley/gocombiner/cc"
	"github.com/richinsley/gocombiner/options"
	"github.com/richinsley/gocombiner/shader"
	"github.com/richinsley/gocombiner/translator"
)

type stageFilter string

const (
	stageBoth     stageFilter = "both"
	stageVertex   stageFilter = "vertex"
	stageFragment stageFilter = "fragment"
)

func describe(w io.Writer, id uint32, f *cc.Features, src *shader.Source) {
	fmt.Fprintf(w, "// formula %#08x\n", id)
	fmt.Fprintf(w, "// color %v, alpha %v, inputs %d, textures %v\n",
		f.Shapes[cc.ChannelColor], f.Shapes[cc.ChannelAlpha], f.NumInputs, f.UsedTextures)
	fmt.Fprintf(w, "// alpha %v, fog %v, edge %v, noise %v\n", f.Alpha, f.Fog, f.TextureEdge, src.Noise)
	fmt.Fprintf(w, "// stride %d:", src.Stride)
	for _, a := range src.Attribs {
		fmt.Fprintf(w, " %s[%d]", a.Name, a.Size)
	}
	fmt.Fprintln(w)
}

// generate writes the shaders for id to w. With validate set, GLSL output is
// also run through the shader translator and rejected if it fails to parse.
func generate(w io.Writer, id uint32, d shader.Dialect, stages stageFilter, validate bool) error {
	if validate && d != shader.DialectGLSLES300 {
		return fmt.Errorf("validation needs the %s dialect, have %s", shader.DialectGLSLES300, d)
	}
	f := cc.Decode(id)
	src, err := shader.Generate(f, d)
	if err != nil {
		return err
	}
	describe(w, id, &f, &src)

	for _, s := range []struct {
		name stageFilter
		code string
	}{{stageVertex, src.Vertex}, {stageFragment, src.Fragment}} {
		if stages != stageBoth && stages != s.name {
			continue
		}
		fmt.Fprintf(w, "\n// ───── %s ─────\n%s", s.name, s.code)
		if !validate {
			continue
		}
		if _, err := translator.Translate(s.code, string(s.name), false); err != nil {
			return fmt.Errorf("formula %#08x: %w", id, err)
		}
	}
	return nil
}

func main() {
	var ids []uint32
	flag.Func("id", "Packed formula id, decimal or 0x hex (repeatable)", func(s string) error {
		id, err := options.ParseID(s)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	var dialect = flag.String("dialect", "glsl410", "Shading language: cg, glsl410 or glsles300")
	var stage = flag.String("stage", string(stageBoth), "Stage to print: vertex, fragment or both")
	var validate = flag.Bool("validate", false, "Check glsles300 output with the shader translator")
	flag.Parse()

	d, err := shader.ParseDialect(*dialect)
	if err != nil {
		log.Fatalf("Invalid dialect: %v", err)
	}
	switch s := stageFilter(*stage); s {
	case stageBoth, stageVertex, stageFragment:
	default:
		log.Fatalf("Invalid stage %q", *stage)
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ccgen -id 0x1045045 [-dialect glsles300] [-validate]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Println()
		}
		if err := generate(os.Stdout, id, d, stageFilter(*stage), *validate); err != nil {
			log.Fatalf("Generate failed: %v", err)
		}
	}
}
