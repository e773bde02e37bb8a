/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
and in responses to clients. Undeliverable relay events are deliberately not
represented here: an offline recipient is a normal outcome, not an error.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Upload Store Errors
const (
	// ErrFileSizeTooLarge indicates the uploaded file exceeds the size limit.
	ErrFileSizeTooLarge = 2001

	// ErrFileTypeInvalid indicates the file name or MIME type is not allowed.
	ErrFileTypeInvalid = 2002

	// ErrFileStorageFailed indicates the upload store rejected or lost the object.
	ErrFileStorageFailed = 2003

	// ErrFileNotFound indicates the requested object key does not exist.
	ErrFileNotFound = 2004
)

// 3xxx: Identity and Security Errors
const (
	// ErrUnauthorized indicates a missing or unusable identity token.
	ErrUnauthorized = 3001

	// ErrTokenInvalid indicates the presented token failed validation.
	ErrTokenInvalid = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
