package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PublishRequest is the request body for publishing a document.
type PublishRequest struct {
	DocURL string `json:"docUrl"`
	Title  string `json:"title,omitempty"`
	Date   string `json:"date,omitempty"`
	Slug   string `json:"slug,omitempty"`
}

// Validate checks the request shape. Document-identifier validation happens
// in the pipeline so the path pattern lives in one place.
func (r PublishRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocURL, validation.Required),
	)
}

// PublishResponse is the success body.
type PublishResponse struct {
	OK   bool   `json:"ok"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}
