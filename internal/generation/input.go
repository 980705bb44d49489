package generation

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
)

type GenerateBody struct {
	Prompt      string   `json:"prompt"`
	UserID      string   `json:"user_id"`
	Model       string   `json:"model"`
	RevoVersion string   `json:"revo_version"`
	MaxTokens   *int     `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	BrandID     *string  `json:"brand_id"`
}

func (b GenerateBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Prompt, v.Required, v.Length(1, 8000)),
		v.Field(&b.RevoVersion, v.In("1.0", "1.5", "2.0")),
		v.Field(&b.MaxTokens, v.Min(1), v.Max(8192)),
		v.Field(&b.Temperature, v.Min(0.0), v.Max(2.0)),
	)
}
