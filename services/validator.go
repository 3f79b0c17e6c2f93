package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"campground-scraper/models"
)

// Validator applies the schema constraints a mapped record must satisfy
// before it may reach storage.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the struct rules declared on
// models.Campground.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate returns nil for a well-formed record, or an error naming the
// offending id and the underlying constraint violation. A rejection never
// aborts the surrounding batch; callers log it and move on.
func (v *Validator) Validate(cg models.Campground) error {
	if err := v.validate.Struct(cg); err != nil {
		id := cg.ID
		if id == "" {
			id = "unknown"
		}
		return fmt.Errorf("campground %s: %w", id, err)
	}
	return nil
}
