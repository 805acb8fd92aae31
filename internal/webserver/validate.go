package webserver

import (
	"github.com/talkincode/hexshop/internal/storefront"
)

// Validator adapts the shop's validator to echo.Validator.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns *storefront.ValidationError for field failures.
func (v *Validator) Validate(i interface{}) error {
	return storefront.ValidateStruct(i)
}
