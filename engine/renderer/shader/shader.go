package shader

import (
	"fmt"
	"regexp"
)

// ShaderType identifies which programmable stage a shader targets.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

var (
	vertexEntryRegex   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)
	lineCommentRegex   = regexp.MustCompile(`//[^\n]*`)
)

// shader is the implementation of the Shader interface.
type shader struct {
	key          string
	source       string
	shaderType   ShaderType
	entryPoint   string
	declarations []Annotation
}

// Shader defines the interface for a pre-processed WGSL shader stage. It exposes the
// shader's unique key, processed source, entry point and the declarations collected by
// the pre-processor.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// ShaderType returns the stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// Declarations returns the group and provider annotations parsed from the shader source.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation

	// Binding resolves the binding index a provider role occupies within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - role: the binding role declared on the provider annotation
	//
	// Returns:
	//   - int: the binding index
	//   - bool: whether the role is declared in the group
	Binding(group int, role AnnotationArg) (int, bool)
}

var _ Shader = &shader{}

// NewShader pre-processes WGSL source and creates a new Shader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader targets
//   - source: the raw WGSL source, typically embedded
//   - pp: the pre-processor resolving @oxy: annotations
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if pre-processing fails or no entry point is found
func NewShader(key string, shaderType ShaderType, source string, pp PreProcessor) (Shader, error) {
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to pre-process source: %w", key, err)
	}
	s := &shader{
		key:          key,
		source:       processed,
		shaderType:   shaderType,
		declarations: append([]Annotation(nil), pp.Declarations()...),
	}
	s.entryPoint = parseEntryPoint(processed, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: no entry point found", key)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) Binding(group int, role AnnotationArg) (int, bool) {
	for _, d := range s.declarations {
		if d.Group != nil && *d.Group == group && d.Role() == role {
			return *d.Binding, true
		}
	}
	return -1, false
}

// parseEntryPoint finds the name of the entry point function for the given stage.
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := lineCommentRegex.ReplaceAllString(source, "")

	re := vertexEntryRegex
	if shaderType == ShaderTypeFragment {
		re = fragmentEntryRegex
	}
	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}
