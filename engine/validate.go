package engine

import (
	"html"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

// RequestValidator plugs go-playground/validator into echo's Validate
type RequestValidator struct {
	validate *validator.Validate
}

// NewValidator returns the validator to assign to echo.Echo.Validator
func NewValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator
func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fe.Namespace()+" failed "+fe.Tag())
	}
	return strings.Join(msgs, "; ")
}

var textPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds the unescape loop in sanitizeText; each pass peels
// one layer of entity encoding.
const maxSanitizePasses = 8

// sanitizeText strips any markup from free text and returns it unescaped.
// Markup smuggled in as entities only becomes markup after unescaping, so
// the text is sanitized again until it stops changing.
func sanitizeText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		clean := html.UnescapeString(textPolicy.Sanitize(s))
		if clean == s {
			return strings.TrimSpace(clean)
		}
		s = clean
	}
	return strings.TrimSpace(textPolicy.Sanitize(s))
}
