// Package overlay draws caption text onto images. Size-aware font choice,
// five placement presets, and an optional translucent backdrop keep short
// marketing captions readable on any background.
package overlay

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"

	"github.com/nevisai/platform/pkg/img"
)

const (
	backdropPadding = 20
	jpegQuality     = 95
	maxSourceMPXS   = 23.0

	defaultFontColor = "#FFFFFF"
	defaultBgColor   = "#000000"
	defaultBgOpacity = 0.7
	defaultPosition  = "center"
	defaultFamily    = "DejaVuSans"
)

// Options tunes one overlay. Zero values mean "pick for me".
type Options struct {
	FontSize      int      `json:"font_size"`
	FontColor     string   `json:"font_color"`
	BgColor       string   `json:"bg_color"`
	BgOpacity     *float64 `json:"bg_opacity"`
	Position      string   `json:"position"`
	FontFamily    string   `json:"font_family"`
	AddBackground *bool    `json:"add_background"`
}

func (o Options) fontColor() string {
	if o.FontColor == "" {
		return defaultFontColor
	}
	return o.FontColor
}

func (o Options) bgColor() string {
	if o.BgColor == "" {
		return defaultBgColor
	}
	return o.BgColor
}

func (o Options) bgOpacity() float64 {
	if o.BgOpacity == nil {
		return defaultBgOpacity
	}
	return *o.BgOpacity
}

func (o Options) position() string {
	if o.Position == "" {
		return defaultPosition
	}
	return o.Position
}

func (o Options) addBackground() bool {
	if o.AddBackground == nil {
		return true
	}
	return *o.AddBackground
}

type Service struct {
	fetch func(ctx context.Context, url string) ([]byte, error)
}

func NewService(fetch func(ctx context.Context, url string) ([]byte, error)) *Service {
	return &Service{fetch: fetch}
}

// Render downloads the source image, draws text onto it, and returns the
// finished JPEG as a data URL.
func (s *Service) Render(ctx context.Context, imageURL, text string, opts Options) (string, error) {
	data, err := s.fetch(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	src = img.DownscaleImage(src, maxSourceMPXS)

	composed, err := Compose(src, text, opts)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, composed, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Compose draws text onto src per opts and returns the result.
func Compose(src image.Image, text string, opts Options) (image.Image, error) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	size := opts.FontSize
	if size <= 0 {
		size = OptimalFontSize(text, width, height)
	}

	dc := gg.NewContextForImage(src)
	loadFontFace(dc, opts.FontFamily, float64(size))

	tw, th := dc.MeasureString(text)
	x, y := anchor(opts.position(), float64(width), float64(height), tw, th)

	if opts.addBackground() {
		r, g, b, err := hexRGB(opts.bgColor())
		if err != nil {
			return nil, err
		}
		dc.SetRGBA255(r, g, b, int(255*opts.bgOpacity()))
		dc.DrawRectangle(x-backdropPadding, y-backdropPadding, tw+2*backdropPadding, th+2*backdropPadding)
		dc.Fill()
	}

	r, g, b, err := hexRGB(opts.fontColor())
	if err != nil {
		return nil, err
	}
	dc.SetRGB255(r, g, b)
	dc.DrawStringAnchored(text, x, y, 0, 0)

	return dc.Image(), nil
}

// OptimalFontSize picks a size from the image dimensions, shrunk for long
// captions and grown for short ones. The clamp keeps text from vanishing on
// small images or swallowing large ones.
func OptimalFontSize(text string, width, height int) int {
	size := min(width, height) / 15

	switch n := utf8.RuneCountInString(text); {
	case n > 50:
		size = int(float64(size) * 0.7)
	case n > 30:
		size = int(float64(size) * 0.8)
	case n < 15:
		size = int(float64(size) * 1.2)
	}

	lo := max(16, width/50)
	hi := min(width/8, height/8)
	return max(lo, min(size, hi))
}

// anchor returns the top-left corner of the text box for a placement preset.
func anchor(position string, w, h, tw, th float64) (x, y float64) {
	switch position {
	case "top":
		return (w - tw) / 2, h / 6
	case "bottom":
		return (w - tw) / 2, h - h/6 - th
	case "left":
		return w / 10, (h - th) / 2
	case "right":
		return w - w/10 - tw, (h - th) / 2
	default:
		return (w - tw) / 2, (h - th) / 2
	}
}

// loadFontFace tries the system font paths for family and falls back to
// DejaVuSans. gg keeps its built-in bitmap face when nothing loads.
func loadFontFace(dc *gg.Context, family string, points float64) {
	for _, path := range fontCandidates(family) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := dc.LoadFontFace(path, points); err == nil {
			return
		}
	}
}

func fontCandidates(family string) []string {
	if family == "" {
		family = defaultFamily
	}
	paths := []string{
		fmt.Sprintf("/usr/share/fonts/truetype/dejavu/%s.ttf", family),
		fmt.Sprintf("/usr/share/fonts/TTF/%s.ttf", family),
		fmt.Sprintf("/Library/Fonts/%s.ttf", family),
	}
	if family != defaultFamily {
		paths = append(paths,
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
		)
	}
	return paths
}

func hexRGB(s string) (r, g, b int, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("bad hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad hex color %q", s)
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff), nil
}
