package brand

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type BrandBody struct {
	BusinessName     string            `json:"business_name"`
	BusinessType     string            `json:"business_type"`
	Industry         string            `json:"industry"`
	Location         string            `json:"location"`
	WebsiteURL       string            `json:"website_url"`
	Description      string            `json:"description"`
	Services         string            `json:"services"`
	TargetAudience   string            `json:"target_audience"`
	ValueProposition string            `json:"value_proposition"`
	CallsToAction    []string          `json:"calls_to_action"`
	ContactEmail     string            `json:"contact_email"`
	ContactPhone     string            `json:"contact_phone"`
	SocialLinks      map[string]string `json:"social_links"`
	BrandColors      []string          `json:"brand_colors"`
	UserID           string            `json:"user_id"`
}

func (b BrandBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.BusinessName, v.Required, v.Length(1, 200)),
		v.Field(&b.WebsiteURL, is.URL),
		v.Field(&b.ContactEmail, is.Email),
	)
}
