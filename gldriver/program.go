package gldriver

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/gocombiner/renderer"
	"github.com/richinsley/gocombiner/shader"
	"github.com/richinsley/gocombiner/translator"
)

// CompileProgram compiles and links src, binding each attribute to its slot
// and each sampler to the texture unit of its stage.
func (d *Driver) CompileProgram(src *shader.Source) (renderer.ProgramHandle, error) {
	vsCode, fsCode := src.Vertex, src.Fragment
	var vsNames, fsNames *translator.Result
	if d.opts.Translate {
		var err error
		if vsNames, err = translator.Translate(vsCode, "vertex", d.opts.GLES); err != nil {
			return 0, &renderer.CompileError{Stage: "vertex", Log: err.Error()}
		}
		if fsNames, err = translator.Translate(fsCode, "fragment", d.opts.GLES); err != nil {
			return 0, &renderer.CompileError{Stage: "fragment", Log: err.Error()}
		}
		vsCode, fsCode = vsNames.Code, fsNames.Code
	}

	vs, err := compileShader(vsCode, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(fsCode, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	for _, a := range src.Attribs {
		name := a.Name
		if vsNames != nil {
			name = vsNames.Mapped(name)
		}
		gl.BindAttribLocation(program, uint32(a.Slot), gl.Str(name+"\x00"))
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, &renderer.CompileError{Stage: "link", Log: strings.TrimRight(logText, "\x00")}
	}

	h := renderer.ProgramHandle(program)
	if fsNames != nil {
		d.names[h] = fsNames.Names
	}

	gl.UseProgram(program)
	for st, used := range src.Textures {
		if used {
			d.Uniform1i(d.UniformLocation(h, shader.SamplerName(st)), int32(st))
		}
	}
	return h, nil
}

func compileShader(source string, shaderType uint32, stage string) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(sh, logLength, nil, gl.Str(logText))
		gl.DeleteShader(sh)
		return 0, &renderer.CompileError{Stage: stage, Log: strings.TrimRight(logText, "\x00")}
	}
	return sh, nil
}
