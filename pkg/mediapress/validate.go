package mediapress

import (
	"bytes"
	"fmt"
	"image"
	"reflect"
	"strings"

	// Decoders for the accepted upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateRequest evaluates the declared constraints on req, plus the image
// content rules for upload when one is present. It returns a *ValidationError
// carrying every violation, or nil when the request is clean.
func validateRequest(req interface{}, upload *ImageUpload) error {
	ve := &ValidationError{}

	if err := fieldValidator.Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			ve.Add(fe.Field(), fieldMessage(fe))
		}
	}

	// Content rules only apply when the image passed its presence check.
	if upload != nil && len(ve.Fields["image"]) == 0 {
		validateImage(ve, upload)
	}

	if len(ve.Fields) == 0 {
		return nil
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("the %s field is required", fe.Field())
	case "min":
		return fmt.Sprintf("the %s field must be at least %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("the %s field must be a number", fe.Field())
	case "email":
		return fmt.Sprintf("the %s field must be a valid email address", fe.Field())
	default:
		return fmt.Sprintf("the %s field is invalid", fe.Field())
	}
}

func validateImage(ve *ValidationError, upload *ImageUpload) {
	if len(upload.Data) > MaxImageBytes {
		ve.Add("image", "the image may not be greater than 2048 kilobytes")
		return
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(upload.Data)); err != nil {
		ve.Add("image", "the image must be a valid image")
	}
}
