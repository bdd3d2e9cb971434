package common

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"

	"imgcatalog/src/config"
)

func newTestProcessor(t *testing.T) *ImageProcessor {
	t.Helper()
	p, err := NewImageProcessor(config.Default().Images)
	if err != nil {
		t.Fatalf("NewImageProcessor failed: %v", err)
	}
	return p
}

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
		wantErr       bool
	}{
		{"landscape exact ratio", 600, 400, 300, 200, false},
		{"quarter scale", 1200, 900, 300, 225, false},
		{"portrait truncates", 333, 500, 300, 450, false},
		{"upscales narrow source", 100, 50, 300, 150, false},
		{"odd ratio truncates", 7, 3, 300, 128, false},
		{"height truncates to zero", 3000, 1, 0, 0, true},
		{"empty source", 0, 10, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ThumbnailSize(tt.width, tt.height, 300)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ThumbnailSize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ThumbnailSize(%d, %d) = %dx%d, want %dx%d", tt.width, tt.height, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnailSizeTooSmallIsSentinel(t *testing.T) {
	_, _, err := ThumbnailSize(3000, 1, 300)
	if !errors.Is(err, ErrThumbnailTooSmall) {
		t.Errorf("Expected ErrThumbnailTooSmall, got %v", err)
	}
}

func TestToRGBDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	dst := ToRGB(src)

	if got := dst.NRGBAAt(0, 0); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("Expected transparent pixel colour kept with full alpha, got %+v", got)
	}
	if got := dst.NRGBAAt(1, 0); got != (color.NRGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Errorf("Expected translucent pixel made opaque, got %+v", got)
	}
	if src.NRGBAAt(1, 0).A != 128 {
		t.Error("ToRGB must not modify its input")
	}
}

func TestThumbnail(t *testing.T) {
	p := newTestProcessor(t)

	thumb, err := p.Thumbnail(imaging.New(600, 400, color.NRGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	if b := thumb.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
		t.Errorf("Expected 300x200 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeWebP(t *testing.T) {
	tests := []struct {
		name     string
		lossless bool
	}{
		{"lossy", false},
		{"lossless", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Images
			cfg.Lossless = tt.lossless
			p, err := NewImageProcessor(cfg)
			if err != nil {
				t.Fatalf("NewImageProcessor failed: %v", err)
			}

			out := filepath.Join(t.TempDir(), "out.webp")
			if err := p.EncodeWebP(out, imaging.New(64, 48, color.NRGBA{G: 255, A: 255})); err != nil {
				t.Fatalf("EncodeWebP failed: %v", err)
			}

			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("Failed to read output: %v", err)
			}
			if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
				t.Fatalf("Output is not a RIFF/WEBP file")
			}

			cfgDecoded, err := webp.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Failed to decode output: %v", err)
			}
			if cfgDecoded.Width != 64 || cfgDecoded.Height != 48 {
				t.Errorf("Expected 64x48, got %dx%d", cfgDecoded.Width, cfgDecoded.Height)
			}
		})
	}
}

func TestEncodeWebPConvertsOtherImageTypes(t *testing.T) {
	p := newTestProcessor(t)

	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	out := filepath.Join(t.TempDir(), "gray.webp")
	if err := p.EncodeWebP(out, gray); err != nil {
		t.Fatalf("EncodeWebP failed for *image.Gray: %v", err)
	}
}

func TestEncodeWebPMissingDirectory(t *testing.T) {
	p := newTestProcessor(t)

	out := filepath.Join(t.TempDir(), "missing", "out.webp")
	if err := p.EncodeWebP(out, imaging.New(4, 4, color.Black)); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}

func TestOpenRejectsNonImage(t *testing.T) {
	p := newTestProcessor(t)

	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := p.Open(path); err == nil {
		t.Error("Expected decode error for non-image content")
	}
}

func TestNewImageProcessorRejectsUnknownFilter(t *testing.T) {
	cfg := config.Default().Images
	cfg.Filter = "box"
	if _, err := NewImageProcessor(cfg); err == nil {
		t.Error("Expected error for unknown filter")
	}
}

func TestSequenceName(t *testing.T) {
	tests := []struct {
		section string
		seq     int
		want    string
	}{
		{"caixa2", 1, "caixa2-001.webp"},
		{"acab1", 42, "acab1-042.webp"},
		{"braço", 1000, "braço-1000.webp"},
	}

	for _, tt := range tests {
		if got := SequenceName(tt.section, tt.seq); got != tt.want {
			t.Errorf("SequenceName(%q, %d) = %q, want %q", tt.section, tt.seq, got, tt.want)
		}
	}
}
