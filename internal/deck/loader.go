package deck

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// decoders maps lowercase file extensions to their decoder. TGA has no
// magic number, so formats are picked by extension rather than sniffed.
var decoders = map[string]func(r *bytes.Reader) (image.Image, error){
	".png":  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
	".jpg":  func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) },
	".jpeg": func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) },
	".webp": func(r *bytes.Reader) (image.Image, error) { return nativewebp.Decode(r) },
	".bmp":  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
	".tga":  func(r *bytes.Reader) (image.Image, error) { return tga.Decode(r) },
}

// Supported reports whether path has an image extension LoadImage decodes.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadImage reads and decodes a page image (PNG, JPEG, WebP, BMP or TGA).
func LoadImage(path string) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deck: read %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("deck: unknown image extension %q: %s", ext, path)
	}

	img, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("deck: decode %s: %w", path, err)
	}
	return img, nil
}
