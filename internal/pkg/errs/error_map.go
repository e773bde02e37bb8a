/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process uploaded data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large."},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Upload Store Errors
	ErrFileSizeTooLarge:  {Code: ErrFileSizeTooLarge, Message: "File is too large."},
	ErrFileTypeInvalid:   {Code: ErrFileTypeInvalid, Message: "File type is not allowed."},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again."},
	ErrFileNotFound:      {Code: ErrFileNotFound, Message: "File not found.", Status: http.StatusNotFound},

	// 3xxx: Identity and Security Errors
	ErrUnauthorized: {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrTokenInvalid: {Code: ErrTokenInvalid, Message: "Session is invalid or expired.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
