package renderer

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-swarm/engine/simulation"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/sprite_direct.wgsl
var spriteDirectSource string

//go:embed assets/sprite_indirect.wgsl
var spriteIndirectSource string

const (
	// PipelineKeyDirect is the pipeline drawing host-built matrices.
	PipelineKeyDirect = "sprite_direct"

	// PipelineKeyIndirect is the pipeline building matrices from per-channel storage buffers.
	PipelineKeyIndirect = "sprite_indirect"
)

// Bind group indices shared by both sprite pipelines.
const (
	groupCamera    = 0
	groupMaterial  = 1
	groupInstances = 2
)

// PipelineKey maps a submission mode and batch size to the pipeline that draws it.
// The batch size is baked into the shader arrays, so each size gets its own pipeline.
//
// Parameters:
//   - mode: the submission mode
//   - batchSize: the batch size
//
// Returns:
//   - string: the pipeline key
func PipelineKey(mode batch_renderer.Mode, batchSize int) string {
	base := PipelineKeyDirect
	if mode == batch_renderer.ModeIndirect {
		base = PipelineKeyIndirect
	}
	return fmt.Sprintf("%s_%d", base, batchSize)
}

// NewSpritePipeline pre-processes the embedded sprite shader for a mode and describes its layouts.
// The returned pipeline still has to be registered with the Renderer before drawing.
//
// Parameters:
//   - mode: the submission mode the pipeline serves
//   - batchSize: the maximum number of instances per draw
//
// Returns:
//   - pipeline.Pipeline: the unregistered pipeline
//   - error: an error if the shader source fails to pre-process
func NewSpritePipeline(mode batch_renderer.Mode, batchSize int) (pipeline.Pipeline, error) {
	source := spriteDirectSource
	if mode == batch_renderer.ModeIndirect {
		source = spriteIndirectSource
	}
	key := PipelineKey(mode, batchSize)

	pp := shader.NewPreProcessor(
		shader.WithConstant("BATCH_SIZE", uint32(batchSize)),
		shader.WithConstant("EASE_DURATION", simulation.EaseDuration),
	)
	vs, err := shader.NewShader(key+"_vs", shader.ShaderTypeVertex, source, pp)
	if err != nil {
		return nil, err
	}
	fs, err := shader.NewShader(key+"_fs", shader.ShaderTypeFragment, source, pp)
	if err != nil {
		return nil, err
	}

	instances, err := instanceLayout(vs, mode, batchSize)
	if err != nil {
		return nil, err
	}

	var cam camera.GPUCameraUniform
	var params material.GPUMaterialParams
	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithBlendEnabled(true),
		pipeline.WithBindGroupLayout(groupCamera, wgpu.BindGroupLayoutDescriptor{
			Label: key + " camera",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: uint64(cam.Size())},
			}},
		}),
		pipeline.WithBindGroupLayout(groupMaterial, wgpu.BindGroupLayoutDescriptor{
			Label: key + " material",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: wgpu.ShaderStageFragment,
					Texture: wgpu.TextureBindingLayout{
						SampleType:    wgpu.TextureSampleTypeFloat,
						ViewDimension: wgpu.TextureViewDimension2D,
					},
				},
				{
					Binding:    1,
					Visibility: wgpu.ShaderStageFragment,
					Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
				},
				{
					Binding:    2,
					Visibility: wgpu.ShaderStageFragment,
					Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: uint64(params.Size())},
				},
			},
		}),
		pipeline.WithBindGroupLayout(groupInstances, instances),
		pipeline.WithVertexLayout(wgpu.VertexBufferLayout{
			ArrayStride: 16,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			},
		}),
	), nil
}

// instanceRoles lists, per mode, the instance channels in the order the surface binds them.
var instanceRoles = map[batch_renderer.Mode][3]shader.AnnotationArg{
	batch_renderer.ModeDirect:   {shader.AnnotationArgTransforms, shader.AnnotationArgPosDir, shader.AnnotationArgTimes},
	batch_renderer.ModeIndirect: {shader.AnnotationArgPositions, shader.AnnotationArgDirections, shader.AnnotationArgTimes},
}

// instanceLayout builds the per-batch group from the provider roles declared in the vertex shader.
// Roles must occupy bindings 0..2 in surface order.
func instanceLayout(vs shader.Shader, mode batch_renderer.Mode, batchSize int) (wgpu.BindGroupLayoutDescriptor, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, 3)
	for i, role := range instanceRoles[mode] {
		binding, ok := vs.Binding(groupInstances, role)
		if !ok {
			return wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("shader %s does not declare instance role %q", vs.Key(), role)
		}
		if binding != i {
			return wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("shader %s binds %q at %d, expected %d", vs.Key(), role, binding, i)
		}
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(binding),
			Visibility: wgpu.ShaderStageVertex,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
		}
		switch role {
		case shader.AnnotationArgTransforms:
			entry.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: uint64(batchSize * 64)}
		case shader.AnnotationArgPosDir:
			entry.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: uint64(batchSize * 16)}
		}
		entries = append(entries, entry)
	}
	return wgpu.BindGroupLayoutDescriptor{Label: vs.Key() + " instances", Entries: entries}, nil
}
