package render

import (
	"bufio"
	"fmt"
	"image"
	"os"
)

// Format is the per-texel layout of a Texture.
type Format int

const (
	FormatRGBA Format = iota // 4 bytes per texel
	FormatGrey               // 1 byte per texel
)

// BytesPerTexel returns the stride of one texel in f.
func (f Format) BytesPerTexel() int {
	if f == FormatGrey {
		return 1
	}
	return 4
}

func (f Format) String() string {
	if f == FormatGrey {
		return "grey"
	}
	return "rgba"
}

// Texture is a flat texel buffer. Row 0 is the bottom of the source image so
// that v grows upward, as mesh UVs do.
//
// A Texture must not be modified once it is shared with an Object; the
// rasterizer reads it from many goroutines without locking.
type Texture struct {
	Width  int
	Height int
	Format Format
	Pix    []byte
}

// NewTexture creates a zeroed texture.
func NewTexture(width, height int, format Format) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Format: format,
		Pix:    make([]byte, width*height*format.BytesPerTexel()),
	}
}

// NewSolidTexture creates an RGBA texture filled with c.
func NewSolidTexture(width, height int, c Color) *Texture {
	tex := NewTexture(width, height, FormatRGBA)
	for i := 0; i < len(tex.Pix); i += 4 {
		tex.Pix[i], tex.Pix[i+1], tex.Pix[i+2], tex.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return tex
}

// LoadTexture decodes an image file into a texture of the given format.
// PNG, JPEG, GIF, TGA, BMP, TIFF and WebP are supported. The decoder is
// picked by extension, falling back to the file header.
func LoadTexture(path string, format Format) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, err := Decode(bufio.NewReader(f), FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img, format), nil
}

// TextureFromImage copies img into a texture, flipping it so row 0 is the
// image's bottom row. Grey textures keep the luma of each pixel.
func TextureFromImage(img image.Image, format Format) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex := NewTexture(width, height, format)
	bpp := format.BytesPerTexel()

	for y := range height {
		row := height - 1 - y
		for x := range width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			i := (row*width + x) * bpp
			if format == FormatGrey {
				r, g, b, _ := c.RGBA()
				// Rec. 601 luma, as image/color.GrayModel does.
				lum := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
				tex.Pix[i] = uint8(lum)
				continue
			}
			r, g, b, a := c.RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.Pix[i] = uint8(r >> 8)
			tex.Pix[i+1] = uint8(g >> 8)
			tex.Pix[i+2] = uint8(b >> 8)
			tex.Pix[i+3] = uint8(a >> 8)
		}
	}
	return tex
}

func (t *Texture) clamp(x, y int) (int, int) {
	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}
	return x, y
}

// Pixel returns the texel at (x, y), clamped to the texture edges.
// A grey texture returns its value replicated across R, G and B.
func (t *Texture) Pixel(x, y int) Color {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return ColorBlack
	}
	x, y = t.clamp(x, y)
	if t.Format == FormatGrey {
		v := t.Pix[y*t.Width+x]
		return Color{R: v, G: v, B: v, A: 255}
	}
	i := (y*t.Width + x) * 4
	return Color{R: t.Pix[i], G: t.Pix[i+1], B: t.Pix[i+2], A: t.Pix[i+3]}
}

// Grey returns the texel at (x, y) as an intensity in [0, 1]. RGBA textures
// use their red channel.
func (t *Texture) Grey(x, y int) float64 {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return 0
	}
	x, y = t.clamp(x, y)
	i := (y*t.Width + x) * t.Format.BytesPerTexel()
	return float64(t.Pix[i]) / 255
}

// SetPixel writes a texel. It is meant for building textures before they are
// shared.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	if t.Format == FormatGrey {
		t.Pix[y*t.Width+x] = c.R
		return
	}
	i := (y*t.Width + x) * 4
	t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = c.R, c.G, c.B, c.A
}
