// Package imageio converts between images and bilateral slice tensors.
//
// A guide is the luminance of an image scaled to [0, 1], laid out [W, H, B].
// Outputs [C, W, H, B] are written back as grayscale (C == 1) or RGB
// (C >= 3, first three channels) images.
package imageio

import (
	"fmt"
	"image"
	"image/color"

	"github.com/born-ml/bislice/internal/tensor"
	"github.com/disintegration/imaging"
)

// Options controls how guide images are prepared.
type Options struct {
	// Width and Height resize the image when both are positive.
	Width, Height int
}

// LoadGuide reads an image file and returns its luminance as a [W, H, 1]
// guide.
func LoadGuide(path string, opts Options) (*tensor.RawTensor, error) {
	return LoadGuides([]string{path}, opts)
}

// LoadGuides reads one image per batch entry into a [W, H, B] guide.
func LoadGuides(paths []string, opts Options) (*tensor.RawTensor, error) {
	imgs := make([]image.Image, len(paths))
	for i, path := range paths {
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("load guide %s: %w", path, err)
		}
		imgs[i] = img
	}
	return GuideFromImages(imgs, opts)
}

// GuideFromImages returns the luminance of imgs as a [W, H, len(imgs)]
// guide. Images that do not match the first image's size are resized to it
// unless opts fixes the size explicitly.
func GuideFromImages(imgs []image.Image, opts Options) (*tensor.RawTensor, error) {
	if len(imgs) == 0 {
		return nil, fmt.Errorf("guide: no images")
	}

	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		size := imgs[0].Bounds().Size()
		w, h = size.X, size.Y
	}

	guide, err := tensor.Zeros(tensor.Shape{w, h, len(imgs)}, tensor.CPU)
	if err != nil {
		return nil, err
	}
	view, err := guide.View3()
	if err != nil {
		return nil, err
	}

	for b, img := range imgs {
		if size := img.Bounds().Size(); size.X != w || size.Y != h {
			img = imaging.Resize(img, w, h, imaging.Lanczos)
		}
		fillLuminance(view, b, imaging.Grayscale(img))
	}
	return guide, nil
}

func fillLuminance(view tensor.View3, b int, gray *image.NRGBA) {
	for y := 0; y < view.Dim(1); y++ {
		for x := 0; x < view.Dim(0); x++ {
			view.Set(x, y, b, float32(gray.Pix[gray.PixOffset(x, y)])/255)
		}
	}
}

// OutputImage renders batch b of an output [C, W, H, B] as an image, with
// values clamped to [0, 1].
func OutputImage(out *tensor.RawTensor, b int) (image.Image, error) {
	view, err := out.View4()
	if err != nil {
		return nil, fmt.Errorf("output image: %w", err)
	}
	channels, w, h := view.Dim(0), view.Dim(1), view.Dim(2)
	if b < 0 || b >= view.Dim(3) {
		return nil, fmt.Errorf("output image: batch %d out of range [0, %d)", b, view.Dim(3))
	}
	if channels != 1 && channels < 3 {
		return nil, fmt.Errorf("output image: %d channels, want 1 or at least 3", channels)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if channels == 1 {
				v := toByte(view.At(0, x, y, b))
				img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
				continue
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(view.At(0, x, y, b)),
				G: toByte(view.At(1, x, y, b)),
				B: toByte(view.At(2, x, y, b)),
				A: 255,
			})
		}
	}
	return img, nil
}

// SaveOutput writes batch b of an output tensor to path. The format follows
// the file extension.
func SaveOutput(out *tensor.RawTensor, b int, path string) error {
	img, err := OutputImage(out, b)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save output %s: %w", path, err)
	}
	return nil
}

func toByte(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}
