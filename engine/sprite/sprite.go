package sprite

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-swarm/common"
)

// sprite is the implementation of the Sprite interface.
type sprite struct {
	name          string
	texture       common.TextureStagingData
	pivot         [2]float32
	pixelsPerUnit float32
	vertices      []GPUVertex
	indices       []uint32
}

// Sprite defines the interface for a 2D image drawn as a textured quad.
// The quad is built once from the texture size, the pivot and the pixels-per-unit scale,
// and is shared by every instance the swarm draws.
type Sprite interface {
	// Name retrieves the sprite identifier.
	//
	// Returns:
	//   - string: the sprite name
	Name() string

	// Texture retrieves the decoded RGBA pixels backing the sprite.
	//
	// Returns:
	//   - common.TextureStagingData: the texture data
	Texture() common.TextureStagingData

	// Pivot returns the normalized pivot point, where (0.5, 0.5) is the centre of the image.
	//
	// Returns:
	//   - [2]float32: the pivot
	Pivot() [2]float32

	// PixelsPerUnit returns how many texture pixels map to one world unit.
	//
	// Returns:
	//   - float32: the pixels-per-unit scale
	PixelsPerUnit() float32

	// Extent returns the world-space width and height of the quad.
	//
	// Returns:
	//   - [2]float32: the quad extent
	Extent() [2]float32

	// Vertices returns the four quad corners.
	//
	// Returns:
	//   - []GPUVertex: the quad vertices
	Vertices() []GPUVertex

	// VertexData returns the quad vertices serialized for GPU upload.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the triangle indices serialized as little-endian uint32 values.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the quad mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int
}

var _ Sprite = &sprite{}

// quadIndices are the two counter-clockwise triangles covering the quad.
var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

// NewSprite creates a new Sprite from decoded texture data with the specified options applied.
//
// Parameters:
//   - texture: the RGBA texture backing the sprite
//   - options: a variadic list of SpriteBuilderOption functions to configure the Sprite
//
// Returns:
//   - Sprite: a new instance of Sprite configured with the provided options
func NewSprite(texture common.TextureStagingData, options ...SpriteBuilderOption) Sprite {
	s := &sprite{
		name:          "sprite",
		texture:       texture,
		pivot:         [2]float32{0.5, 0.5},
		pixelsPerUnit: 100,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.pixelsPerUnit <= 0 {
		s.pixelsPerUnit = 100
	}
	s.buildMesh()
	return s
}

// Load decodes an image file and wraps it in a Sprite.
//
// Parameters:
//   - path: the image file path (PNG, JPEG, BMP or WebP)
//   - options: a variadic list of SpriteBuilderOption functions to configure the Sprite
//
// Returns:
//   - Sprite: the loaded sprite
//   - error: error if the file cannot be read or decoded
func Load(path string, options ...SpriteBuilderOption) (Sprite, error) {
	tex, err := common.LoadTexture(path)
	if err != nil {
		return nil, err
	}
	return NewSprite(tex, append([]SpriteBuilderOption{WithName(path)}, options...)...), nil
}

func (s *sprite) buildMesh() {
	ext := s.Extent()
	left := -s.pivot[0] * ext[0]
	bottom := -(1 - s.pivot[1]) * ext[1]
	right := left + ext[0]
	top := bottom + ext[1]

	s.vertices = []GPUVertex{
		{Position: [2]float32{left, bottom}, UV: [2]float32{0, 1}},
		{Position: [2]float32{right, bottom}, UV: [2]float32{1, 1}},
		{Position: [2]float32{right, top}, UV: [2]float32{1, 0}},
		{Position: [2]float32{left, top}, UV: [2]float32{0, 0}},
	}
	s.indices = quadIndices
}

func (s *sprite) Name() string {
	return s.name
}

func (s *sprite) Texture() common.TextureStagingData {
	return s.texture
}

func (s *sprite) Pivot() [2]float32 {
	return s.pivot
}

func (s *sprite) PixelsPerUnit() float32 {
	return s.pixelsPerUnit
}

func (s *sprite) Extent() [2]float32 {
	return [2]float32{
		float32(s.texture.Width) / s.pixelsPerUnit,
		float32(s.texture.Height) / s.pixelsPerUnit,
	}
}

func (s *sprite) Vertices() []GPUVertex {
	return s.vertices
}

func (s *sprite) VertexData() []byte {
	out := make([]byte, 0, len(s.vertices)*16)
	for i := range s.vertices {
		out = append(out, s.vertices[i].Marshal()...)
	}
	return out
}

func (s *sprite) IndexData() []byte {
	out := make([]byte, len(s.indices)*4)
	for i, idx := range s.indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out
}

func (s *sprite) IndexCount() int {
	return len(s.indices)
}
