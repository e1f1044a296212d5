package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/gogpu/naga"
)

// Names of the built-in programs.
const (
	ProgramFlatColor = "flat_color"
	ProgramQuadColor = "quad_color"
)

//go:embed shaders/flat_color.wgsl
var flatColorShaderSource string

//go:embed shaders/quad_color.wgsl
var quadColorShaderSource string

// DefaultSources returns the WGSL sources of the built-in programs,
// keyed by program name.
func DefaultSources() map[string]string {
	return map[string]string{
		ProgramFlatColor: flatColorShaderSource,
		ProgramQuadColor: quadColorShaderSource,
	}
}

// ShaderCompileError is returned when a program fails to compile. It
// is fatal to pipeline creation.
type ShaderCompileError struct {
	Program string
	Err     error
}

func (err ShaderCompileError) Error() string {
	return fmt.Sprintf("compile shader program %q: %v", err.Program, err.Err)
}

func (err ShaderCompileError) Unwrap() error {
	return err.Err
}

// Program is a compiled shader program. Compiling it validates it. The
// SPIR-V is kept so that it can be exported, as gg builds the shader
// modules of its GPU backend itself and takes none from outside.
type Program struct {
	Name   string
	Source string
	SPIRV  []uint32
}

// Compile compiles WGSL source into a program.
func Compile(name, source string) (*Program, error) {
	spirv, err := compileSPIRV(source)
	if err != nil {
		return nil, ShaderCompileError{Program: name, Err: err}
	}

	return &Program{
		Name:   name,
		Source: source,
		SPIRV:  spirv,
	}, nil
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if (len(spirvBytes) == 0) || (len(spirvBytes)%4 != 0) {
		return nil, fmt.Errorf("invalid SPIR-V length: %v", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}

	return spirv, nil
}

// WriteSPIRV writes the program's SPIR-V module to w in the
// little-endian byte order of a .spv file.
func (prog *Program) WriteSPIRV(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, prog.SPIRV)
}

// compileAll compiles every source, in name order so that failures
// are reported deterministically.
func compileAll(sources map[string]string) (map[string]*Program, error) {
	programs := make(map[string]*Program, len(sources))
	for _, name := range slices.Sorted(maps.Keys(sources)) {
		prog, err := Compile(name, sources[name])
		if err != nil {
			return nil, err
		}
		programs[name] = prog
	}
	return programs, nil
}
