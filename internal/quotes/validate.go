package quotes

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Palette holds the colors offered when creating a category
var Palette = []string{"#218690", "#76DAE5", "#4E9B8F", "#70C1B3", "#247BA0", "#50514F"}

// DefaultColor is used when a category is created without a color
const DefaultColor = "#218690"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryInput holds the user-editable fields of a category
type CategoryInput struct {
	Title string `json:"title" validate:"required"`
	Color string `json:"color" validate:"quotecolor"`
}

// QuoteInput holds the user-editable fields of a quote
type QuoteInput struct {
	Text   string `json:"text" validate:"required"`
	Author string `json:"author"`
}

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the quote book's custom tags
func NewValidator() *Validator {
	v := validator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "quotecolor", validateColor)

	return &Validator{validate: v}
}

// mustRegister panics when a custom tag cannot be registered
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("quotes: register %q validation: %v", tag, err))
	}
}

// Validate checks a struct and returns the first failure as a *ValidationError
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: msgForTag(fe)}
}

// msgForTag returns a human-readable error message for a validation tag
func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "quotecolor":
		return fmt.Sprintf("%q is not a palette color or a #RRGGBB hex code", fe.Value())
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

// validateColor accepts palette entries and 6-digit hex codes
func validateColor(fl validator.FieldLevel) bool {
	return IsValidColor(fl.Field().String())
}

// IsValidColor reports whether color is a palette entry or a #RRGGBB code
func IsValidColor(color string) bool {
	for _, c := range Palette {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return hexColorPattern.MatchString(color)
}

// normalizeCategory trims the input and fills in the default color
func normalizeCategory(title, color string) CategoryInput {
	in := CategoryInput{
		Title: strings.TrimSpace(title),
		Color: strings.TrimSpace(color),
	}
	if in.Color == "" {
		in.Color = DefaultColor
	}
	return in
}

// normalizeQuote trims the input and falls back to UnknownAuthor
func normalizeQuote(text, author string) QuoteInput {
	in := QuoteInput{
		Text:   strings.TrimSpace(text),
		Author: strings.TrimSpace(author),
	}
	if in.Author == "" {
		in.Author = UnknownAuthor
	}
	return in
}
