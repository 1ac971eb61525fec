package pagelist

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

const manifest = `<?xml version="1.0" encoding="utf-8"?>
<Deck Name="Story">
  <Page Name="cover" Image="pages/cover.png"/>
  <Page Name="intro" Title="Chapter One" Footer="2 / 3" Background="#ffffff" Accent="#123456">
    <Body>
      It was a bright cold day in April.
    </Body>
  </Page>
  <Page Name="empty"/>
  <Page Image="pages/back.png"/>
</Deck>
`

func TestParse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.xml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	pages, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, PageDef{Index: 0, Name: "cover", Image: filepath.Join(dir, "pages", "cover.png")}, pages[0])

	assert.Equal(t, 1, pages[1].Index)
	assert.Equal(t, "intro", pages[1].Name)
	require.NotNil(t, pages[1].Content)
	assert.Equal(t, "Chapter One", pages[1].Content.Title)
	assert.Equal(t, "It was a bright cold day in April.", pages[1].Content.Body)
	assert.Equal(t, "2 / 3", pages[1].Content.Footer)
	assert.Equal(t, "#ffffff", pages[1].Content.Background)
	assert.Equal(t, "#123456", pages[1].Content.Accent)
	assert.Empty(t, pages[1].Image)

	assert.Equal(t, 2, pages[2].Index)
	assert.Equal(t, "page-3", pages[2].Name)

	assert.Equal(t, []string{pages[0].Image, pages[2].Image}, Paths(pages))
}

func TestParseErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Parse(filepath.Join(dir, "missing.xml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte("<Deck><Page"), 0o644))
	_, err = Parse(bad)
	assert.Error(t, err)
}

func TestScanDirAndSources(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "02-b.png"))
	writePNG(t, filepath.Join(dir, "01-a.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	pages, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "01-a", pages[0].Name)
	assert.Equal(t, "02-b", pages[1].Name)
	assert.Equal(t, 1, pages[1].Index)

	sources, err := Sources(pages)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.False(t, sources[0].IsCaptured())
	assert.Equal(t, 4, sources[0].Image.Bounds().Dx())

	_, err = ScanDir(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestSourcesMixed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.xml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pages"), 0o755))
	writePNG(t, filepath.Join(dir, "pages", "cover.png"))

	pages, err := Parse(path)
	require.NoError(t, err)

	// back.png is missing.
	_, err = Sources(pages)
	assert.ErrorContains(t, err, "page 2")

	writePNG(t, filepath.Join(dir, "pages", "back.png"))
	sources, err := Sources(pages)
	require.NoError(t, err)
	assert.True(t, sources[1].IsCaptured())
	assert.Equal(t, "Chapter One", sources[1].Content.Title)
}
