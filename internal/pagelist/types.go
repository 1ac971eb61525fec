package pagelist

import "page-curl-renderer/internal/capture"

// PageDef holds one page parsed from a deck manifest or found in a pages
// directory. Exactly one of Image and Content is set.
type PageDef struct {
	Index   int
	Name    string
	Image   string // absolute path of the page image
	Content *capture.Descriptor
}
