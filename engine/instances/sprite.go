package instances

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

/**
 * @brief A textured quad, optionally split into tiles. Texture, Width and
 * Height stay zero until the decoded image has been uploaded.
 */
type SpriteInstance struct {
	instanceBase
	img        imageTexture
	tileWidth  int
	tileHeight int
	tile       int
}

func NewSpriteInstance(def *definition.AssetDefinition, transform *math.Transform) *SpriteInstance {
	s := &SpriteInstance{instanceBase: newInstanceBase(def, transform)}
	s.loadExtraAttributes()
	return s
}

func (s *SpriteInstance) loadExtraAttributes() {
	if attrs := s.def.Sprite(); attrs != nil {
		s.tileWidth = attrs.TileWidth
		s.tileHeight = attrs.TileHeight
	}
}

func (s *SpriteInstance) Load(projectDir string) bool {
	path := s.def.DataPath(projectDir)
	rgba, err := decodeImage(path)
	if err != nil {
		core.LogError("could not load sprite %s: %s", s.name, err)
		return false
	}

	if !s.publish(func() { s.img.pending = rgba }) {
		return false
	}
	core.LogDebug("decoded sprite %s %dx%d", s.name, rgba.Bounds().Dx(), rgba.Bounds().Dy())
	return true
}

func (s *SpriteInstance) NeedsUpload() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.pending != nil
}

func (s *SpriteInstance) Upload(up TextureUploader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img.upload(s.uuid, up)
}

func (s *SpriteInstance) Texture() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.texture
}

func (s *SpriteInstance) Width() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.width
}

func (s *SpriteInstance) Height() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.height
}

func (s *SpriteInstance) TileSize() (width, height int) {
	return s.tileWidth, s.tileHeight
}

// TileCount is the number of tiles in the sheet, 1 when the sprite is not tiled.
func (s *SpriteInstance) TileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tileWidth <= 0 || s.tileHeight <= 0 || s.img.width == 0 {
		return 1
	}
	n := (s.img.width / s.tileWidth) * (s.img.height / s.tileHeight)
	if n < 1 {
		return 1
	}
	return n
}

func (s *SpriteInstance) Tile() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tile
}

// SetTile selects the tile to draw, wrapping around the tile count.
func (s *SpriteInstance) SetTile(tile int) {
	n := s.TileCount()
	tile %= n
	if tile < 0 {
		tile += n
	}
	s.mu.Lock()
	s.tile = tile
	s.mu.Unlock()
}

func (s *SpriteInstance) Destroy() {
	s.mu.Lock()
	s.img.release()
	s.markDestroyed()
	s.mu.Unlock()
}
