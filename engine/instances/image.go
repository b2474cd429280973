package instances

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeImage reads the image at path into RGBA pixels.
func decodeImage(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%s is not an image (detected %q)", path, kind.MIME.Value)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%s (%s) has no pixels", path, format)
	}
	return rgba, nil
}

// imageTexture is the decode then upload state shared by sprites and textures.
// Decoding happens on a loader goroutine, the upload on the graphics goroutine.
type imageTexture struct {
	pending  *image.RGBA
	texture  uint32
	width    int
	height   int
	uploader TextureUploader
}

func (t *imageTexture) release() {
	if t.uploader != nil && t.texture != 0 {
		t.uploader.ReleaseTexture(t.texture)
	}
	t.pending = nil
	t.uploader = nil
	t.texture = 0
	t.width = 0
	t.height = 0
}

func (t *imageTexture) upload(owner string, up TextureUploader) {
	if t.pending == nil || up == nil {
		return
	}
	id := up.UploadTexture(owner, t.pending)
	if id == 0 {
		return
	}
	b := t.pending.Bounds()
	t.texture = id
	t.width = b.Dx()
	t.height = b.Dy()
	t.uploader = up
	t.pending = nil
}
