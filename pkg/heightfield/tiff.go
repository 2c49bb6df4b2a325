package heightfield

import (
	"fmt"
	"image"
	"io"
	"os"

	"golang.org/x/image/tiff"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// LoadTIFF decodes a TIFF elevation raster into a field. Grayscale
// images map sample values directly (8-bit 0..255, 16-bit 0..65535);
// color images fall back to standard luminance. Callers typically
// follow up with ScaleToRange to get real-world elevations.
func LoadTIFF(r io.Reader) (*Field, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding tiff: %v", errs.ErrDataIntegrity, err)
	}
	return fromImage(img)
}

// LoadTIFFFile opens and decodes a TIFF elevation raster.
func LoadTIFFFile(path string) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	field, err := LoadTIFF(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return field, nil
}

func fromImage(img image.Image) (*Field, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float32, w*h)

	switch im := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := im.Pix[y*im.Stride : y*im.Stride+w]
			for x, v := range row {
				data[y*w+x] = float32(v)
			}
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*im.Stride + x*2
				data[y*w+x] = float32(uint16(im.Pix[i])<<8 | uint16(im.Pix[i+1]))
			}
		}
	default:
		// Luminance fallback for RGB rasters.
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				data[y*w+x] = 0.299*float32(r>>8) + 0.587*float32(g>>8) + 0.114*float32(bb>>8)
			}
		}
	}
	return New(data, w, h)
}
