package storefront

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/talkincode/hexshop/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	telPattern   = regexp.MustCompile(`^(0[2-8]\d{7}|09\d{8})$`)
)

// CheckoutForm is the recipient form posted at checkout.
type CheckoutForm struct {
	Email   string `form:"email" validate:"required,shopemail"`
	Name    string `form:"name" validate:"required"`
	Tel     string `form:"tel" validate:"required,twphone"`
	Address string `form:"address" validate:"required"`
	Message string `form:"message"`
}

// Order converts the form into the checkout payload.
func (f CheckoutForm) Order() domain.Order {
	return domain.Order{
		User: domain.Recipient{
			Name:    strings.TrimSpace(f.Name),
			Email:   strings.TrimSpace(f.Email),
			Tel:     strings.TrimSpace(f.Tel),
			Address: strings.TrimSpace(f.Address),
		},
		Message: f.Message,
	}
}

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the shop's custom tags
// registered. Field names in errors come from the form tag.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("shopemail", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		_ = v.RegisterValidation("twphone", func(fl validator.FieldLevel) bool {
			return telPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		validate = v
	})
	return validate
}

var fieldMessages = map[string]string{
	"required":  "is required",
	"shopemail": "is not a valid email address",
	"twphone":   "must be a valid phone number",
}

// Validate checks the form. It returns a *ValidationError listing every
// failing field, or nil.
func (f CheckoutForm) Validate() error {
	return ValidateStruct(f)
}

// ValidateStruct runs the shared validator and flattens failures into a
// *ValidationError.
func ValidateStruct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}
