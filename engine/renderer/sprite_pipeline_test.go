package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-swarm/engine/sprite"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineKey(t *testing.T) {
	assert.Equal(t, "sprite_direct_7", PipelineKey(batch_renderer.ModeDirect, 7))
	assert.Equal(t, "sprite_indirect_7", PipelineKey(batch_renderer.ModeIndirect, 7))
	assert.NotEqual(t, PipelineKey(batch_renderer.ModeDirect, 7), PipelineKey(batch_renderer.ModeDirect, 8))
}

func TestNewSpritePipeline(t *testing.T) {
	tests := []struct {
		mode       batch_renderer.Mode
		wantConst  string
		wantGroup2 []wgpu.BufferBindingLayout
	}{
		{
			mode:      batch_renderer.ModeDirect,
			wantConst: "const BATCH_SIZE: u32 = 7u;",
			wantGroup2: []wgpu.BufferBindingLayout{
				{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 7 * 64},
				{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 7 * 16},
				{Type: wgpu.BufferBindingTypeReadOnlyStorage},
			},
		},
		{
			mode:      batch_renderer.ModeIndirect,
			wantConst: "const EASE_DURATION: u32 = 10u;",
			wantGroup2: []wgpu.BufferBindingLayout{
				{Type: wgpu.BufferBindingTypeReadOnlyStorage},
				{Type: wgpu.BufferBindingTypeReadOnlyStorage},
				{Type: wgpu.BufferBindingTypeReadOnlyStorage},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p, err := NewSpritePipeline(tt.mode, 7)
			require.NoError(t, err)

			assert.Equal(t, PipelineKey(tt.mode, 7), p.PipelineKey())
			assert.False(t, p.DepthTestEnabled())
			assert.False(t, p.DepthWriteEnabled())
			assert.True(t, p.BlendEnabled())
			assert.Nil(t, p.RenderPipeline())

			vs := p.Shader(shader.ShaderTypeVertex)
			fs := p.Shader(shader.ShaderTypeFragment)
			require.NotNil(t, vs)
			require.NotNil(t, fs)
			assert.Equal(t, "vs_main", vs.EntryPoint())
			assert.Equal(t, "fs_main", fs.EntryPoint())
			assert.Contains(t, vs.Source(), tt.wantConst)
			assert.NotContains(t, vs.Source(), "@oxy:")

			descs := p.BindGroupLayoutDescriptors()
			require.Len(t, descs, 3)
			assert.Equal(t, uint64(80), descs[groupCamera].Entries[0].Buffer.MinBindingSize)
			assert.Len(t, descs[groupMaterial].Entries, 3)

			instances := descs[groupInstances].Entries
			require.Len(t, instances, len(tt.wantGroup2))
			for i, want := range tt.wantGroup2 {
				assert.Equal(t, uint32(i), instances[i].Binding)
				assert.Equal(t, want, instances[i].Buffer)
				assert.Equal(t, wgpu.ShaderStageVertex, instances[i].Visibility)
			}

			layouts := p.VertexLayouts()
			require.Len(t, layouts, 1)
			assert.Equal(t, uint64(16), layouts[0].ArrayStride)
			assert.Len(t, layouts[0].Attributes, 2)
		})
	}
}

func TestNewSpritePipelineBatchSize(t *testing.T) {
	p, err := NewSpritePipeline(batch_renderer.ModeDirect, 3)
	require.NoError(t, err)
	assert.Contains(t, p.Shader(shader.ShaderTypeVertex).Source(), "const BATCH_SIZE: u32 = 3u;")
	assert.Equal(t, uint64(3*64), p.BindGroupLayoutDescriptors()[groupInstances].Entries[0].Buffer.MinBindingSize)
}

func TestBufferUsage(t *testing.T) {
	tests := []struct {
		kind buffer_pool.BufferKind
		want wgpu.BufferUsage
	}{
		{buffer_pool.BufferKindStructured, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{buffer_pool.BufferKindIndirectArguments, wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst},
		{buffer_pool.BufferKindConstant, wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := bufferUsage(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := bufferUsage(buffer_pool.BufferKind(42))
	assert.ErrorIs(t, err, core.ErrInvalidBufferShape)
}

func TestNewRenderInfo(t *testing.T) {
	s := sprite.NewSprite(sprite.Disc(16))
	m := material.NewMaterial(sprite.Disc(16), material.WithInstancing(false))

	info := NewRenderInfo(s, m)
	assert.Equal(t, 6, info.Geometry.IndexCount())
	assert.False(t, info.Material.InstancingEnabled())
}
