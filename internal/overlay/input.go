package overlay

import (
	"regexp"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	hexColorRe = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)
	// font_family lands in a filesystem path, so only plain names pass.
	fontFamilyRe = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)
)

// OverlayBody is the payload for POST /overlay-text.
type OverlayBody struct {
	ImageURL string  `json:"image_url"`
	Text     string  `json:"text"`
	Options  Options `json:"options"`
}

func (b OverlayBody) Validate() error {
	if err := v.ValidateStruct(&b,
		v.Field(&b.ImageURL, v.Required, is.URL),
		v.Field(&b.Text, v.Required, v.Length(1, 500)),
	); err != nil {
		return err
	}
	return b.Options.Validate()
}

func (o Options) Validate() error {
	return v.ValidateStruct(&o,
		v.Field(&o.FontSize, v.Min(8), v.Max(512)),
		v.Field(&o.FontColor, v.Match(hexColorRe)),
		v.Field(&o.BgColor, v.Match(hexColorRe)),
		v.Field(&o.BgOpacity, v.Min(0.0), v.Max(1.0)),
		v.Field(&o.Position, v.In("center", "top", "bottom", "left", "right")),
		v.Field(&o.FontFamily, v.Match(fontFamilyRe), v.Length(0, 64)),
	)
}
