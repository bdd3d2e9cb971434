package common

// Image processor for catalog WebP variants
//
// Responsibilities:
// 1. Decode JPEG/PNG sources (imaging registers the std decoders)
// 2. Force images to opaque 3-channel colour before encoding
// 3. Compute thumbnail sizes (fixed width, truncated proportional height)
// 4. Encode WebP, lossy at a quality or lossless

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"imgcatalog/src/config"
)

// ErrThumbnailTooSmall is returned when the proportional thumbnail height truncates to zero
var ErrThumbnailTooSmall = errors.New("thumbnail height truncates to zero")

// losslessLevel is the libwebp effort used in lossless mode (0 fast .. 9 small)
const losslessLevel = 6

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// ImageProcessor decodes, resizes and encodes catalog images
type ImageProcessor struct {
	quality    int
	thumbWidth int
	lossless   bool
	filter     imaging.ResampleFilter
}

// NewImageProcessor creates a processor from the images config section
func NewImageProcessor(cfg config.ImagesConfig) (*ImageProcessor, error) {
	filter, ok := filters[cfg.Filter]
	if !ok {
		return nil, fmt.Errorf("unknown resample filter %q", cfg.Filter)
	}
	if cfg.ThumbWidth <= 0 {
		return nil, fmt.Errorf("thumbnail width must be positive, got %d", cfg.ThumbWidth)
	}

	return &ImageProcessor{
		quality:    cfg.Quality,
		thumbWidth: cfg.ThumbWidth,
		lossless:   cfg.Lossless,
		filter:     filter,
	}, nil
}

// Open decodes an image file
func (p *ImageProcessor) Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ToRGB returns an opaque copy of img. Colour values are kept as stored and
// alpha is discarded, so transparent regions are not composited onto a background.
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// ThumbnailSize returns the thumbnail dimensions for a width x height source.
// The height is the truncated product of the source height and the width ratio.
func ThumbnailSize(width, height, thumbWidth int) (int, int, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid source size %dx%d", width, height)
	}

	ratio := float64(thumbWidth) / float64(width)
	thumbHeight := int(float64(height) * ratio)
	if thumbHeight < 1 {
		return 0, 0, fmt.Errorf("%dx%d at width %d: %w", width, height, thumbWidth, ErrThumbnailTooSmall)
	}

	return thumbWidth, thumbHeight, nil
}

// Thumbnail resizes img to the configured thumbnail width
func (p *ImageProcessor) Thumbnail(img image.Image) (*image.NRGBA, error) {
	b := img.Bounds()
	w, h, err := ThumbnailSize(b.Dx(), b.Dy(), p.thumbWidth)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, w, h, p.filter), nil
}

func (p *ImageProcessor) encoderOptions() (*encoder.Options, error) {
	if p.lossless {
		return encoder.NewLosslessEncoderOptions(encoder.PresetDefault, losslessLevel)
	}
	return encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(p.quality))
}

// EncodeWebP writes img to path as WebP. A partially written file is removed on failure.
func (p *ImageProcessor) EncodeWebP(path string, img image.Image) error {
	options, err := p.encoderOptions()
	if err != nil {
		return fmt.Errorf("failed to build encoder options: %w", err)
	}

	// libwebp imports RGBA and NRGBA only
	switch img.(type) {
	case *image.NRGBA, *image.RGBA:
	default:
		img = imaging.Clone(img)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := webp.Encode(f, img, options); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode webp: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// SequenceName returns the output file name shared by the full and thumb variants
func SequenceName(section string, seq int) string {
	return fmt.Sprintf("%s-%03d.webp", section, seq)
}
