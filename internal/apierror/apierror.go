// Package apierror defines the error taxonomy of the core services and the
// canonical JSON envelope every response is wrapped in. All errors returned to
// clients go through this package to ensure consistency and to prevent leaking
// internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies an error so handlers can map it to an HTTP status without
// string matching.
type Kind string

const (
	KindMissingField        Kind = "missing_field"
	KindInvalidChoice       Kind = "invalid_choice"
	KindInvalidValue        Kind = "invalid_value"
	KindInvoiceNotFound     Kind = "invoice_not_found"
	KindProductNotInInvoice Kind = "product_not_in_invoice"
	KindInsufficientStock   Kind = "insufficient_stock"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindInternal            Kind = "internal"
)

// Error is a field-scoped, classified error. Field is empty for errors that
// are not tied to a single request field.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

func MissingField(field string) *Error {
	return &Error{Kind: KindMissingField, Field: field, Message: "This field is required."}
}

func InvalidChoice(field string) *Error {
	return &Error{Kind: KindInvalidChoice, Field: field, Message: "Invalid choice."}
}

func InvalidValue(field, message string) *Error {
	return &Error{Kind: KindInvalidValue, Field: field, Message: message}
}

func InvoiceNotFound() *Error {
	return &Error{Kind: KindInvoiceNotFound, Field: "invoice_num", Message: "Invalid invoice number."}
}

func ProductNotInInvoice() *Error {
	return &Error{Kind: KindProductNotInInvoice, Field: "vendor_product", Message: "This product is not part of the given invoice."}
}

func InsufficientStock() *Error {
	return &Error{Kind: KindInsufficientStock, Field: "return_qty", Message: "Return quantity cannot be greater than stock count."}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf extracts the Kind from any error chain; non-classified errors are
// reported as internal faults.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf maps an error to its HTTP status code per the envelope contract:
// validation kinds 400, missing resources 404, state conflicts 409, everything
// else 500.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindMissingField, KindInvalidChoice, KindInvalidValue,
		KindInvoiceNotFound, KindProductNotInInvoice, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fields flattens an error into the field→message map used by the failure
// envelope. Errors without a field are keyed under "detail".
func Fields(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		key := e.Field
		if key == "" {
			key = "detail"
		}
		return map[string]string{key: e.Message}
	}
	return map[string]string{"detail": "Internal server error"}
}

// Envelope is the uniform success response: {success, message, data}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// FailureEnvelope is the uniform failure response: {success:false, message, errors}.
type FailureEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func Wrap(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

func WrapFailure(message string, errs map[string]string) FailureEnvelope {
	return FailureEnvelope{Success: false, Message: message, Errors: errs}
}
