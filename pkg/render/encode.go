package render

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for an image format with no encoder or
// decoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var encoders = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "tga": true,
	"webp": true, "bmp": true, "tif": true, "tiff": true,
}

// Supported reports whether format has an encoder.
func Supported(format string) bool {
	return encoders[strings.ToLower(format)]
}

// Encode writes img to w in the named format: png, jpeg, tga, webp, bmp or
// tiff.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case "tga":
		return tga.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

// Decode reads an image in the named format. An empty or unknown format is
// sniffed from the header.
//
// image.Decode is not used: the tga package registers itself with an empty
// magic string, which matches every file.
func Decode(r io.Reader, format string) (image.Image, error) {
	format = strings.ToLower(format)
	if !decodable(format) {
		br := bufio.NewReader(r)
		header, _ := br.Peek(12)
		format = DetectFormat(header)
		r = br
	}

	switch format {
	case "png":
		return png.Decode(r)
	case "jpg", "jpeg":
		return jpeg.Decode(r)
	case "gif":
		return gif.Decode(r)
	case "tga":
		return tga.Decode(r)
	case "webp":
		return webp.Decode(r)
	case "bmp":
		return bmp.Decode(r)
	case "tif", "tiff":
		return tiff.Decode(r)
	}
	return nil, fmt.Errorf("decode: %w", ErrUnsupportedFormat)
}

func decodable(format string) bool {
	return format == "gif" || encoders[format]
}

// DetectFormat names the format of an image from its first bytes, or returns
// "" when no signature matches. TGA has no signature and is never detected.
func DetectFormat(header []byte) string {
	switch {
	case bytes.HasPrefix(header, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(header, []byte{0xff, 0xd8}):
		return "jpeg"
	case bytes.HasPrefix(header, []byte("GIF8")):
		return "gif"
	case bytes.HasPrefix(header, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(header, []byte("II*\x00")), bytes.HasPrefix(header, []byte("MM\x00*")):
		return "tiff"
	case len(header) >= 12 && string(header[:4]) == "RIFF" && string(header[8:12]) == "WEBP":
		return "webp"
	}
	return ""
}

// FormatFromPath returns the encoder name implied by a file extension.
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// SaveImage encodes img into path, picking the encoder from the extension.
func SaveImage(path string, img image.Image) error {
	format := FormatFromPath(path)
	if !Supported(format) {
		return fmt.Errorf("save %s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Save writes the color buffer to path.
func (fb *Framebuffer) Save(path string) error {
	return SaveImage(path, fb.ToImage())
}
