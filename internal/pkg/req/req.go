/*
Package req provides helpers for HTTP request parsing and data binding.

It wraps JSON and multipart form parsing with strict format and size checks,
returning application errors suitable for the resp package.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"wavechat/internal/pkg/errs"
)

const (
	// MaxFormMemory is the maximum memory (32 MB) ParseMultipartForm may use
	// for non-file fields; larger file parts spill to temporary files.
	MaxFormMemory int64 = 32 << 20 // 32 MB

	// MaxRequestFileSize caps the whole request body, files included,
	// enforced via http.MaxBytesReader.
	MaxRequestFileSize int64 = 20 << 20 // 20 MB
)

// BindJSON binds the JSON request body to dst, rejecting unknown fields and
// trailing content.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// SetupMultipart parses multipart or URL-encoded form data with the size
// limits above applied.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestFileSize)

	err := r.ParseMultipartForm(MaxFormMemory)

	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
