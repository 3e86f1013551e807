package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a RequestError. The router maps a kind to an HTTP
// status; handlers never pick status codes themselves.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// RequestError is used when we want a specific error message returned to the
// caller. Err is rendered as the "error" field and Message as the "message"
// field; either may be empty. MissingKeys is only set for incomplete predict
// bodies.
//
// If the user should see a fixed message but the error chain should carry
// more detail for logging, wrap the detail in Err and keep Message generic.
type RequestError struct {
	Kind        ErrorKind
	Err         error
	Message     string
	MissingKeys []string
}

func (r *RequestError) Error() string {
	if r.Err == nil {
		return fmt.Sprintf("%s: %s", r.Kind, r.Message)
	}
	return fmt.Sprintf("%s: err %v", r.Kind, r.Err)
}

func (r *RequestError) Unwrap() error {
	return r.Err
}

func NewValidationError(msg string) *RequestError {
	return &RequestError{Kind: KindValidation, Err: errors.New(msg)}
}

func NewNotFoundError(msg string) *RequestError {
	return &RequestError{Kind: KindNotFound, Err: errors.New(msg)}
}

func NewInternalError(msg string, cause error) *RequestError {
	return &RequestError{Kind: KindInternal, Err: cause, Message: msg}
}

var (
	ErrMissingAuth   = &RequestError{Kind: KindValidation, Err: errors.New("missing authorization header")}
	ErrInvalidFormat = &RequestError{Kind: KindValidation, Err: errors.New("invalid authentication format")}

	ErrInternalServerError = &RequestError{Kind: KindInternal, Err: errors.New("internal server error")}

	ErrMalformedInput  = NewValidationError("Input JSON tidak ditemukan atau salah format.")
	ErrHeightWeightNaN = NewValidationError("tb dan bb harus berupa angka.")
	ErrInvalidAge      = NewValidationError("usia harus berupa angka positif.")
	ErrInvalidSex      = NewValidationError("jenis_kelamin harus diisi dengan 'Laki-laki' atau 'Perempuan'.")
	ErrInvalidCategory = NewValidationError("Kategori tidak valid. Gunakan 'Gizi Baik', 'Gizi Kurang', atau 'Gizi Lebih'.")
	ErrInvalidCount    = NewValidationError("n harus berupa bilangan bulat.")
	ErrRecordNotFound  = NewNotFoundError("Data tidak ditemukan untuk ID tersebut.")
)

const (
	MsgIncompleteInput = "Data input tidak lengkap."
	MsgCompleteFields  = "Harap lengkapi data: tb (tinggi badan), bb (berat badan), jenis_kelamin, dan usia."
	MsgPredictFailed   = "Terjadi kesalahan dalam prediksi."
)
