package billing

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
)

type CheckoutBody struct {
	Pack   string `json:"pack"`
	UserID string `json:"user_id"`
}

func (b CheckoutBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Pack, v.Required, v.In("starter", "growth", "scale")),
	)
}
