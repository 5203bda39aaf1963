// Package imageprep prepares uploaded photos for OCR. Phone photos of book
// pages are large, skewed in exposure and noisy; the fixed pipeline (rotate,
// resize, grayscale, normalize, threshold or contrast stretch, sharpen)
// markedly improves Tesseract output on them.
package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"

	// Register decoders for the formats clients upload.
	_ "image/gif"
	_ "image/jpeg"
)

// ErrBadImage marks input that could not be decoded as an image. Callers can
// distinguish it from processing failures to blame the upload.
var ErrBadImage = errors.New("imageprep: undecodable image")

// Options controls the preprocessing pipeline. The zero value resizes to
// DefaultMaxWidth with linear contrast stretching and sharpening enabled.
type Options struct {
	// MaxWidth is the target width in pixels; larger images are scaled down
	// preserving aspect ratio. Non-positive selects DefaultMaxWidth.
	MaxWidth int

	// Rotate is a clockwise rotation in degrees, one of 0, 90, 180, 270.
	Rotate int

	// Threshold enables binarization at ThresholdValue instead of the linear
	// contrast stretch.
	Threshold      bool
	ThresholdValue uint8

	// ContrastGain and ContrastBias define the linear stretch
	// v' = gain*v + bias applied when Threshold is off. A zero gain means 1.
	ContrastGain float64
	ContrastBias float64

	// Sharpen applies a 3x3 sharpening convolution as the last step.
	Sharpen bool
}

// DefaultMaxWidth is the resize target when none is configured.
const DefaultMaxWidth = 1600

// Process runs the pipeline over an encoded image and returns a PNG ready for
// the OCR engine.
func Process(data []byte, opts Options) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	if opts.Rotate%360 != 0 {
		img, err = rotate(img, opts.Rotate)
		if err != nil {
			return nil, err
		}
	}

	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	img = resizeToWidth(img, maxWidth)

	gray := toGray(img)
	normalize(gray)

	if opts.Threshold {
		threshold(gray, opts.ThresholdValue)
	} else {
		gain := opts.ContrastGain
		if gain == 0 {
			gain = 1
		}
		contrastStretch(gray, gain, opts.ContrastBias)
	}

	if opts.Sharpen {
		gray = sharpen(gray)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("imageprep: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// rotate turns img clockwise by deg, which must be a multiple of 90.
func rotate(img image.Image, deg int) (image.Image, error) {
	deg = ((deg % 360) + 360) % 360
	if deg%90 != 0 {
		return nil, fmt.Errorf("imageprep: unsupported rotation %d", deg)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	if deg == 90 || deg == 270 {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch deg {
			case 90:
				dst.Set(h-1-y, x, c)
			case 180:
				dst.Set(w-1-x, h-1-y, c)
			case 270:
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst, nil
}

// resizeToWidth scales img down to the target width, preserving aspect ratio.
// Images already narrower pass through untouched.
func resizeToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// normalize stretches the pixel range to the full 0-255 interval.
func normalize(g *image.Gray) {
	min, max := uint8(255), uint8(0)
	for _, p := range g.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if min == 0 && max == 255 || min >= max {
		return
	}
	span := int(max) - int(min)
	for i, p := range g.Pix {
		g.Pix[i] = uint8((int(p) - int(min)) * 255 / span)
	}
}

// threshold binarizes the image. A zero cut picks Otsu's threshold.
func threshold(g *image.Gray, cut uint8) {
	if cut == 0 {
		cut = otsu(g)
	}
	for i, p := range g.Pix {
		if p >= cut {
			g.Pix[i] = 255
		} else {
			g.Pix[i] = 0
		}
	}
}

// otsu computes the histogram threshold maximizing between-class variance.
func otsu(g *image.Gray) uint8 {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	total := len(g.Pix)

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var best float64
	var cut uint8
	for i, n := range hist {
		wB += float64(n)
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(n)
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			cut = uint8(i)
		}
	}
	return cut
}

// contrastStretch applies v' = gain*v + bias, clamped to [0,255].
func contrastStretch(g *image.Gray, gain, bias float64) {
	if gain == 1 && bias == 0 {
		return
	}
	for i, p := range g.Pix {
		g.Pix[i] = clamp(gain*float64(p) + bias)
	}
}

// sharpenKernel is the standard 3x3 sharpening convolution.
var sharpenKernel = [3][3]float64{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

func sharpen(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)
	copy(dst.Pix, g.Pix)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var acc float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					acc += sharpenKernel[ky+1][kx+1] * float64(g.GrayAt(x+kx, y+ky).Y)
				}
			}
			dst.SetGray(x, y, color.Gray{Y: clamp(acc)})
		}
	}
	return dst
}

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
