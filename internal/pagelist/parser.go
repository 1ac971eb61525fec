// Package pagelist builds deck definitions from an XML deck manifest or a
// directory of page images.
package pagelist

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"page-curl-renderer/internal/capture"
	"page-curl-renderer/internal/deck"
)

// xmlDeck matches the deck manifest schema:
//
//	<Deck Name="Story">
//	  <Page Name="cover" Image="pages/cover.png"/>
//	  <Page Name="intro" Title="Chapter One" Footer="2 / 3" Background="#f4efe6">
//	    <Body>Text wrapped onto the card.</Body>
//	  </Page>
//	</Deck>
type xmlDeck struct {
	Name  string    `xml:"Name,attr"`
	Pages []xmlPage `xml:"Page"`
}

type xmlPage struct {
	Name       string `xml:"Name,attr"`
	Image      string `xml:"Image,attr"`
	Title      string `xml:"Title,attr"`
	Footer     string `xml:"Footer,attr"`
	Background string `xml:"Background,attr"`
	Foreground string `xml:"Foreground,attr"`
	Accent     string `xml:"Accent,attr"`
	Body       string `xml:"Body"`
}

// Parse reads a deck manifest. Image paths are relative to the manifest's
// directory. Pages with neither an image nor any text are skipped.
func Parse(xmlPath string) ([]PageDef, error) {
	raw, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("pagelist: read %s: %w", xmlPath, err)
	}

	var d xmlDeck
	if err := xml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("pagelist: parse %s: %w", xmlPath, err)
	}

	dir := filepath.Dir(xmlPath)
	var pages []PageDef
	for i, p := range d.Pages {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("page-%d", i)
		}
		def := PageDef{Index: len(pages), Name: name}

		switch {
		case p.Image != "":
			img := filepath.FromSlash(p.Image)
			if !filepath.IsAbs(img) {
				img = filepath.Join(dir, img)
			}
			def.Image = img
		case p.Title != "" || strings.TrimSpace(p.Body) != "" || p.Footer != "":
			def.Content = &capture.Descriptor{
				Title:      p.Title,
				Body:       strings.TrimSpace(p.Body),
				Footer:     p.Footer,
				Background: p.Background,
				Foreground: p.Foreground,
				Accent:     p.Accent,
			}
		default:
			continue
		}
		pages = append(pages, def)
	}

	return pages, nil
}

// ScanDir lists the page images in dir, sorted by file name.
func ScanDir(dir string) ([]PageDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pagelist: scan %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !deck.Supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	pages := make([]PageDef, len(names))
	for i, name := range names {
		pages[i] = PageDef{
			Index: i,
			Name:  strings.TrimSuffix(name, filepath.Ext(name)),
			Image: filepath.Join(dir, name),
		}
	}
	return pages, nil
}

// Sources decodes every image page and returns the deck sources in order.
func Sources(pages []PageDef) ([]deck.Source, error) {
	out := make([]deck.Source, len(pages))
	for i, p := range pages {
		if p.Content != nil {
			out[i] = deck.Captured(p.Name, *p.Content)
			continue
		}
		img, err := deck.LoadImage(p.Image)
		if err != nil {
			return nil, fmt.Errorf("pagelist: page %d (%s): %w", i, p.Name, err)
		}
		out[i] = deck.Static(p.Name, img)
	}
	return out, nil
}

// Paths returns the image files referenced by pages, for watching.
func Paths(pages []PageDef) []string {
	var out []string
	for _, p := range pages {
		if p.Image != "" {
			out = append(out, p.Image)
		}
	}
	return out
}
