package deck

import (
	"image"

	"page-curl-renderer/internal/capture"
)

// Source is one page of a deck: a decoded image, or a content descriptor
// that is captured to a bitmap the first time the page is needed.
type Source struct {
	Name    string
	Image   image.Image
	Content *capture.Descriptor
}

// Static returns a page backed by an already decoded image.
func Static(name string, img image.Image) Source {
	return Source{Name: name, Image: img}
}

// Captured returns a page rendered on demand from d.
func Captured(name string, d capture.Descriptor) Source {
	return Source{Name: name, Content: &d}
}

// IsCaptured reports whether the page is rendered on demand.
func (s Source) IsCaptured() bool {
	return s.Content != nil
}
