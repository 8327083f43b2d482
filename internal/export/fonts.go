package export

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Embedded gofont families: bold carries the titles and glyph numbers,
// medium the feature type line, regular the body text, italic the
// hints.
var (
	fontBold    = mustParse(gobold.TTF)
	fontMedium  = mustParse(gomedium.TTF)
	fontRegular = mustParse(goregular.TTF)
	fontItalic  = mustParse(goitalic.TTF)
)

func mustParse(ttf []byte) *sfnt.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(err) // embedded fonts always parse
	}
	return f
}

type faceKey struct {
	fnt  *sfnt.Font
	size float64
}

// faceCache hands out one opentype face per font and size. Title
// fitting probes many sizes and rendering happens every dirty frame,
// so faces are built once and reused.
type faceCache struct {
	faces map[faceKey]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[faceKey]font.Face)}
}

func (fc *faceCache) face(fnt *sfnt.Font, size float64) font.Face {
	key := faceKey{fnt, size}
	if f, ok := fc.faces[key]; ok {
		return f
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone, // supersampling smooths instead
	})
	if err != nil {
		panic(err)
	}
	fc.faces[key] = f
	return f
}

// measure returns the tight pixel bounds of s.
func (fc *faceCache) measure(fnt *sfnt.Font, size float64, s string) (w, h float64) {
	b, _ := font.BoundString(fc.face(fnt, size), s)
	return fromFixed(b.Max.X - b.Min.X), fromFixed(b.Max.Y - b.Min.Y)
}

// fitSize walks the size down from max until s fits in maxWidth.
func (fc *faceCache) fitSize(fnt *sfnt.Font, s string, maxWidth float64, maxSize, minSize int) int {
	for size := maxSize; size > minSize; size-- {
		if w, _ := fc.measure(fnt, float64(size), s); w <= maxWidth {
			return size
		}
	}
	return minSize
}
