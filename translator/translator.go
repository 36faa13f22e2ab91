// Package translator wraps a process wide GLSL ES to desktop or ES shader
// translator. The translator is created on first use.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the shared translator.
func Get() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
		if initErr != nil {
			initErr = fmt.Errorf("translator: %w", initErr)
		}
	})
	return translator, initErr
}

// Result is a translated shader stage.
type Result struct {
	Code string
	// Names maps each declared name to the name it has in Code.
	Names map[string]string
}

// Translate converts GLSL ES 3.00 source for stage ("vertex" or "fragment")
// into GLSL 4.10, or into ESSL when gles is set.
func Translate(src, stage string, gles bool) (*Result, error) {
	tr, err := Get()
	if err != nil {
		return nil, err
	}
	format := gst.OutputFormatGLSL410
	if gles {
		format = gst.OutputFormatESSL
	}
	out, err := tr.TranslateShader(src, stage, gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}
	res := &Result{Code: out.Code, Names: make(map[string]string, len(out.Variables))}
	for name, v := range out.Variables {
		res.Names[name] = v.MappedName
	}
	return res, nil
}

// Mapped returns the translated name of name, or name itself when the
// translator left it alone.
func (r *Result) Mapped(name string) string {
	if m, ok := r.Names[name]; ok && m != "" {
		return m
	}
	return name
}
