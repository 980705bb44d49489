package profiler

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type AnalyzeBody struct {
	WebsiteURL     string   `json:"website_url"`
	WebsiteContent string   `json:"website_content"`
	UserID         string   `json:"user_id"`
	Temperature    *float64 `json:"temperature"`
	MaxTokens      *int     `json:"max_tokens"`
}

func (b AnalyzeBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.WebsiteURL,
			v.Required.When(b.WebsiteContent == "").Error("website_url or website_content is required"),
			is.URL),
		v.Field(&b.MaxTokens, v.Min(1), v.Max(8192)),
		v.Field(&b.Temperature, v.Min(0.0), v.Max(2.0)),
	)
}
