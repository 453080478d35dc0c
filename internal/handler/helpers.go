package handler

import (
	"net/http"
	"reflect"
	"strings"

	"backstock/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json names so envelope errors match the wire.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals validate as their string form; "required" then means non-zero.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			if d.IsZero() {
				return ""
			}
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
// On failure it writes the failure envelope and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WrapFailure("Invalid request body", map[string]string{"detail": err.Error()}))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery decodes query parameters into req and runs struct validation.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WrapFailure("Invalid query parameters", map[string]string{"detail": err.Error()}))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.WrapFailure("Validation failed", map[string]string{"detail": err.Error()}))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	c.JSON(http.StatusBadRequest, apierror.WrapFailure("Validation failed", fields))
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "uuid":
		return "Must be a valid id."
	case "email":
		return "Must be a valid email address."
	case "min":
		return "Value is below the allowed minimum."
	case "max":
		return "Value is above the allowed maximum."
	case "gt":
		return "Must be greater than " + fe.Param() + "."
	case "oneof":
		return "Invalid choice."
	default:
		return "Invalid value."
	}
}

// parseUUIDParam reads a path parameter as a UUID, writing the failure
// envelope on malformed input.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WrapFailure("Invalid identifier", map[string]string{name: "Must be a valid id."}))
		return uuid.Nil, false
	}
	return id, true
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, apierror.Wrap(message, data))
}

// respondError maps a service error onto the failure envelope. Unclassified
// errors are logged and masked as internal faults.
func respondError(c *gin.Context, err error) {
	status := apierror.StatusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		message = "Internal server error"
	}
	c.JSON(status, apierror.WrapFailure(message, apierror.Fields(err)))
}
