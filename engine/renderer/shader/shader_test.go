package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `//@oxy:include camera
//@oxy:const COUNT
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:provider 2 1 instances times
@group(2) @binding(1) var<storage, read> times: array<f32>;

// @vertex fn commented_out() {}
@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
	return vec4<f32>(times[i], 0.0, 0.0, f32(COUNT));
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
	return vec4<f32>(1.0);
}
`

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    AnnotationType
		wantNil bool
		wantErr bool
	}{
		{name: "plain code", line: "let x = 1;", wantNil: true},
		{name: "plain comment", line: "// nothing here", wantNil: true},
		{name: "prefix outside comment", line: "let s = \"@oxy:include camera\";", wantNil: true},
		{name: "include", line: "//@oxy:include camera", want: annotationTypeInclude},
		{name: "include unknown struct", line: "//@oxy:include mesh", wantErr: true},
		{name: "include extra args", line: "//@oxy:include camera camera", wantErr: true},
		{name: "const", line: "  //@oxy:const BATCH_SIZE", want: annotationTypeConst},
		{name: "const missing name", line: "//@oxy:const", wantErr: true},
		{name: "group", line: "//@oxy:group 0 0 storage_uniform camera camera", want: AnnotationTypeBindingGroup},
		{name: "group array type", line: "//@oxy:group 1 3 storage_read items array<material_params>", want: AnnotationTypeBindingGroup},
		{name: "group bad number", line: "//@oxy:group x 0 storage_uniform camera camera", wantErr: true},
		{name: "group bad address space", line: "//@oxy:group 0 0 private camera camera", wantErr: true},
		{name: "provider", line: "//@oxy:provider 1 0 material", want: AnnotationTypeProvider},
		{name: "provider with role", line: "//@oxy:provider 2 0 instances positions", want: AnnotationTypeProvider},
		{name: "provider unknown role", line: "//@oxy:provider 2 0 instances bones", wantErr: true},
		{name: "provider unknown identity", line: "//@oxy:provider 2 0 lights", wantErr: true},
		{name: "empty", line: "//@oxy:", wantErr: true},
		{name: "unknown type", line: "//@oxy:compute 1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "line 7")
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, a)
				return
			}
			require.NotNil(t, a)
			assert.Equal(t, tt.want, a.Type)
			assert.Equal(t, 7, a.Line)
		})
	}
}

func TestAnnotationRole(t *testing.T) {
	a, err := parseAnnotation("//@oxy:provider 2 0 instances positions", 1)
	require.NoError(t, err)
	assert.Equal(t, AnnotationArgPositions, a.Role())
	assert.Equal(t, 2, *a.Group)
	assert.Equal(t, 0, *a.Binding)

	a, err = parseAnnotation("//@oxy:provider 1 0 material", 1)
	require.NoError(t, err)
	assert.Empty(t, a.Role())

	a, err = parseAnnotation("//@oxy:group 0 0 storage_uniform camera camera", 1)
	require.NoError(t, err)
	assert.Empty(t, a.Role())
}

func TestPreProcessorProcess(t *testing.T) {
	pp := NewPreProcessor(WithConstant("COUNT", 7))

	out, err := pp.Process(testSource)
	require.NoError(t, err)

	assert.Contains(t, out, "struct CameraUniform")
	assert.Contains(t, out, "const COUNT: u32 = 7u;")
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> camera: CameraUniform;")
	assert.NotContains(t, out, "@oxy:")

	decls := pp.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, AnnotationTypeProvider, decls[1].Type)
	assert.Equal(t, AnnotationArgTimes, decls[1].Role())

	v, ok := pp.Constant("COUNT")
	assert.True(t, ok)
	assert.Equal(t, uint32(7), v)
	_, ok = pp.Constant("MISSING")
	assert.False(t, ok)
}

func TestPreProcessorArrayType(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:group 1 3 storage_read items array<material_params>")
	require.NoError(t, err)
	assert.Equal(t, "@group(1) @binding(3) var<storage, read> items: array<MaterialParams>;", out)
}

func TestPreProcessorDeclarationsReset(t *testing.T) {
	pp := NewPreProcessor(WithConstant("COUNT", 1))
	_, err := pp.Process(testSource)
	require.NoError(t, err)
	require.Len(t, pp.Declarations(), 2)

	_, err = pp.Process("fn f() {}")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestPreProcessorUnregisteredConstant(t *testing.T) {
	_, err := NewPreProcessor().Process(testSource)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `constant "COUNT" is not registered`)
}

func TestNewShader(t *testing.T) {
	pp := NewPreProcessor(WithConstant("COUNT", 3))

	vs, err := NewShader("test_vs", ShaderTypeVertex, testSource, pp)
	require.NoError(t, err)
	assert.Equal(t, "test_vs", vs.Key())
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, vs.ShaderType())
	assert.True(t, strings.Contains(vs.Source(), "const COUNT: u32 = 3u;"))

	fs, err := NewShader("test_fs", ShaderTypeFragment, testSource, pp)
	require.NoError(t, err)
	assert.Equal(t, "fs_main", fs.EntryPoint())

	binding, ok := vs.Binding(2, AnnotationArgTimes)
	assert.True(t, ok)
	assert.Equal(t, 1, binding)

	_, ok = vs.Binding(1, AnnotationArgTimes)
	assert.False(t, ok)
	_, ok = vs.Binding(2, AnnotationArgPositions)
	assert.False(t, ok)
}

func TestNewShaderKeepsDeclarationsAcrossProcessCalls(t *testing.T) {
	pp := NewPreProcessor(WithConstant("COUNT", 3))
	vs, err := NewShader("test_vs", ShaderTypeVertex, testSource, pp)
	require.NoError(t, err)

	_, err = pp.Process("fn f() {}")
	require.NoError(t, err)
	assert.Len(t, vs.Declarations(), 2)
}

func TestNewShaderErrors(t *testing.T) {
	pp := NewPreProcessor()

	_, err := NewShader("broken", ShaderTypeVertex, "//@oxy:include nothing\n@vertex fn vs_main() {}", pp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shader broken")

	_, err = NewShader("no_entry", ShaderTypeFragment, "@vertex fn vs_main() {}", pp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entry point")

	_, err = NewShader("commented", ShaderTypeVertex, "// @vertex fn hidden() {}", pp)
	require.Error(t, err)
}
