package sprite

// SpriteBuilderOption is a functional option for configuring a Sprite via NewSprite.
type SpriteBuilderOption func(*sprite)

// WithName is an option builder that sets the name of the Sprite.
//
// Parameters:
//   - name: the sprite identifier
//
// Returns:
//   - SpriteBuilderOption: a function that applies the name option to a sprite
func WithName(name string) SpriteBuilderOption {
	return func(s *sprite) {
		s.name = name
	}
}

// WithPivot is an option builder that sets the normalized pivot of the Sprite.
// (0, 0) is the top-left corner of the image and (1, 1) the bottom-right.
//
// Parameters:
//   - x: the horizontal pivot in [0, 1]
//   - y: the vertical pivot in [0, 1]
//
// Returns:
//   - SpriteBuilderOption: a function that applies the pivot option to a sprite
func WithPivot(x, y float32) SpriteBuilderOption {
	return func(s *sprite) {
		s.pivot = [2]float32{x, y}
	}
}

// WithPixelsPerUnit is an option builder that sets how many texture pixels map to one world unit.
// Non-positive values fall back to the default of 100.
//
// Parameters:
//   - ppu: the pixels-per-unit scale
//
// Returns:
//   - SpriteBuilderOption: a function that applies the pixels-per-unit option to a sprite
func WithPixelsPerUnit(ppu float32) SpriteBuilderOption {
	return func(s *sprite) {
		s.pixelsPerUnit = ppu
	}
}
