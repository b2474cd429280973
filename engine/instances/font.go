package instances

import (
	"fmt"
	"os"
	"sort"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

// FontInstance loads either a TrueType/OpenType font or a bitmap .fnt font.
type FontInstance struct {
	instanceBase
	size       float32
	colour     math.Colour
	face       string
	lineHeight int
	baseline   int
	glyphs     int
	pages      []string
}

func NewFontInstance(def *definition.AssetDefinition, transform *math.Transform) *FontInstance {
	f := &FontInstance{instanceBase: newInstanceBase(def, transform)}
	f.loadExtraAttributes()
	return f
}

func (f *FontInstance) loadExtraAttributes() {
	if attrs := f.def.Font(); attrs != nil {
		f.size = attrs.Size
		f.colour = attrs.Colour
	}
	if f.size <= 0 {
		f.size = 24
	}
}

func (f *FontInstance) Load(projectDir string) bool {
	path := f.def.DataPath(projectDir)
	var (
		loaded fontData
		err    error
	)
	switch f.def.Format() {
	case definition.FormatFontFNT:
		loaded, err = loadBitmapFont(path)
	default:
		loaded, err = loadOpenTypeFont(path, f.Size())
	}
	if err != nil {
		core.LogError("could not load font %s: %s", f.name, err)
		return false
	}
	return f.publish(func() {
		f.face = loaded.face
		f.size = loaded.size
		f.lineHeight = loaded.lineHeight
		f.baseline = loaded.baseline
		f.glyphs = loaded.glyphs
		f.pages = loaded.pages
	})
}

// fontData is what a font file yields, published in one go.
type fontData struct {
	face       string
	size       float32
	lineHeight int
	baseline   int
	glyphs     int
	pages      []string
}

func loadOpenTypeFont(path string, size float32) (fontData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fontData{}, err
	}
	collection, err := opentype.ParseCollection(data)
	if err != nil {
		return fontData{}, err
	}
	if collection.NumFonts() == 0 {
		return fontData{}, fmt.Errorf("%s contains no fonts", path)
	}
	sf, err := collection.Font(0)
	if err != nil {
		return fontData{}, err
	}
	family, err := sf.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		core.LogWarn("font %s has no family name: %s", path, err)
	}

	face, err := opentype.NewFace(sf, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return fontData{}, err
	}
	defer face.Close()
	metrics := face.Metrics()

	return fontData{
		face:       family,
		size:       size,
		lineHeight: metrics.Height.Ceil(),
		baseline:   metrics.Ascent.Ceil(),
		glyphs:     sf.NumGlyphs(),
	}, nil
}

func loadBitmapFont(path string) (fontData, error) {
	bf, err := bmfont.Load(path)
	if err != nil {
		return fontData{}, err
	}
	desc := bf.Descriptor

	pages := make([]string, 0, len(desc.Pages))
	for _, p := range desc.Pages {
		pages = append(pages, p.File)
	}
	sort.Strings(pages)
	return fontData{
		face:       desc.Info.Face,
		size:       float32(desc.Info.Size),
		lineHeight: int(desc.Common.LineHeight),
		baseline:   int(desc.Common.Base),
		glyphs:     len(desc.Chars),
		pages:      pages,
	}, nil
}

func (f *FontInstance) Size() float32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.size
}

func (f *FontInstance) Colour() math.Colour { return f.colour }

// Face is the family name of the loaded font.
func (f *FontInstance) Face() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.face
}

func (f *FontInstance) LineHeight() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lineHeight
}

func (f *FontInstance) Baseline() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.baseline
}

func (f *FontInstance) GlyphCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.glyphs
}

// Pages lists the atlas images of a bitmap font.
func (f *FontInstance) Pages() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.pages))
	copy(out, f.pages)
	return out
}
