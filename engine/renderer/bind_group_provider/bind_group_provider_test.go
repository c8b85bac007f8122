package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	buf := &wgpu.Buffer{}
	p := NewBindGroupProvider("camera", WithBuffer(0, buf))

	assert.Equal(t, "camera", p.Label())
	assert.Same(t, buf, p.Buffer(0))
	assert.Nil(t, p.Buffer(1))
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(1))
	assert.Zero(t, p.IndexCount())
}

func TestBindGroupProviderSetters(t *testing.T) {
	p := NewBindGroupProvider("sprite")

	vertex, index := &wgpu.Buffer{}, &wgpu.Buffer{}
	p.SetMesh(vertex, index, 6)
	assert.Same(t, vertex, p.VertexBuffer())
	assert.Same(t, index, p.IndexBuffer())
	assert.Equal(t, 6, p.IndexCount())

	tv := &wgpu.TextureView{}
	p.SetTextureView(0, tv)
	assert.Same(t, tv, p.TextureView(0))

	s := &wgpu.Sampler{}
	p.SetSampler(1, s)
	assert.Same(t, s, p.Sampler(1))

	buf := &wgpu.Buffer{}
	p.SetBuffer(2, buf)
	assert.Same(t, buf, p.Buffer(2))

	bg := &wgpu.BindGroup{}
	p.SetBindGroup(bg)
	assert.Same(t, bg, p.BindGroup())
	// Re-setting the same group must not release it.
	p.SetBindGroup(bg)
	assert.Same(t, bg, p.BindGroup())
}
