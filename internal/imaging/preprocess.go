package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/nfnt/resize"
)

// Layout is the memory order of the model input tensor.
type Layout string

const (
	LayoutNHWC Layout = "NHWC"
	LayoutNCHW Layout = "NCHW"
)

const channels = 3

var filters = map[string]resize.InterpolationFunction{
	"nearest":           resize.NearestNeighbor,
	"bilinear":          resize.Bilinear,
	"bicubic":           resize.Bicubic,
	"mitchellnetravali": resize.MitchellNetravali,
	"lanczos2":          resize.Lanczos2,
	"lanczos3":          resize.Lanczos3,
}

// ParseFilter resolves a resampling filter name. An empty name selects bilinear.
func ParseFilter(name string) (resize.InterpolationFunction, error) {
	if name == "" {
		return resize.Bilinear, nil
	}
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown resize filter %q", name)
	}
	return f, nil
}

// Preprocessor turns decoded images into model input tensors.
type Preprocessor struct {
	Width      int
	Height     int
	Layout     Layout
	PixelScale float32
	Filter     resize.InterpolationFunction
}

// Size is the number of float32 values Tensor produces.
func (p *Preprocessor) Size() int {
	return channels * p.Width * p.Height
}

// Tensor resizes img to the target size and returns its RGB channels scaled
// by PixelScale in the configured layout, batch dimension of one.
func (p *Preprocessor) Tensor(img image.Image) ([]float32, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", p.Width, p.Height)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}

	resized := resize.Resize(uint(p.Width), uint(p.Height), dropAlpha(img), p.Filter)
	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width != p.Width || height != p.Height {
		return nil, fmt.Errorf("resized to %dx%d, expected %dx%d", width, height, p.Width, p.Height)
	}

	scale := p.PixelScale
	if scale == 0 {
		scale = 1.0 / 255.0
	}

	data := make([]float32, p.Size())
	plane := width * height
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rv := float32(r>>8) * scale
			gv := float32(g>>8) * scale
			bv := float32(b>>8) * scale

			pixel := y*width + x
			if p.Layout == LayoutNCHW {
				data[pixel] = rv
				data[plane+pixel] = gv
				data[2*plane+pixel] = bv
				continue
			}
			data[pixel*channels] = rv
			data[pixel*channels+1] = gv
			data[pixel*channels+2] = bv
		}
	}

	return data, nil
}

// dropAlpha makes every pixel opaque while keeping its straight (not
// premultiplied) colour, so translucent pixels are not darkened.
func dropAlpha(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 0xff
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}
