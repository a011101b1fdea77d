package glcontext

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	"shadergrid/internal/gpu"
)

// program is a linked GL program with a lazily filled uniform location cache.
type program struct {
	id        uint32
	locations map[string]int32
}

func (p *program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func (p *program) SetFloat(name string, v float32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

func (p *program) SetInt(name string, v int32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

func (p *program) SetVec2(name string, x, y float32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform2f(loc, x, y)
	}
}

func (p *program) SetVec4(name string, x, y, z, w float32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform4f(loc, x, y, z, w)
	}
}

func (p *program) Release() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

// compileShader compiles one stage. On failure the shader object is deleted
// and the info log is returned verbatim in a *gpu.CompileError.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		errorLog := ""
		if logLength > 0 {
			logBytes := make([]byte, logLength)
			gl.GetShaderInfoLog(shader, logLength, nil, &logBytes[0])
			errorLog = string(logBytes)
		}
		gl.DeleteShader(shader)

		stage := gpu.StageVertex
		if shaderType == gl.FRAGMENT_SHADER {
			stage = gpu.StageFragment
		}
		return 0, &gpu.CompileError{Stage: stage, Log: errorLog}
	}
	return shader, nil
}

// newProgram compiles and links a vertex/fragment pair. The program is not
// made current.
func newProgram(vertexSrc, fragmentSrc string) (*program, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return nil, err
	}

	id := gl.CreateProgram()
	gl.AttachShader(id, vertexShader)
	gl.AttachShader(id, fragmentShader)
	gl.LinkProgram(id)

	// shaders are only flagged here; the program keeps them alive
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		errorLog := ""
		if logLength > 0 {
			logBytes := make([]byte, logLength)
			gl.GetProgramInfoLog(id, logLength, nil, &logBytes[0])
			errorLog = string(logBytes)
		}
		gl.DeleteProgram(id)
		return nil, &gpu.LinkError{Log: errorLog}
	}
	return &program{id: id, locations: make(map[string]int32)}, nil
}
