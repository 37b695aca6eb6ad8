// Package errors provides structured domain errors with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Scene errors
	CodeSceneIDEmpty   Code = "SCENE_ID_EMPTY"
	CodeSceneNameEmpty Code = "SCENE_NAME_EMPTY"
	CodeSceneMalformed Code = "SCENE_MALFORMED"
	CodeSceneInvalid   Code = "SCENE_INVALID"

	// Character errors
	CodeCharacterNotFound  Code = "CHARACTER_NOT_FOUND"
	CodeCharacterInvalidID Code = "CHARACTER_INVALID_ID"

	// Listing errors
	CodeFilterInvalid    Code = "FILTER_INVALID"
	CodePageSizeInvalid  Code = "PAGE_SIZE_INVALID"
	CodePageTokenInvalid Code = "PAGE_TOKEN_INVALID"

	// Writer grant errors
	CodeWriteGrantMissing  Code = "WRITE_GRANT_MISSING"
	CodeWriteGrantInvalid  Code = "WRITE_GRANT_INVALID"
	CodeWriteGrantExpired  Code = "WRITE_GRANT_EXPIRED"
	CodeWriteGrantMismatch Code = "WRITE_GRANT_MISMATCH"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeSceneIDEmpty,
		CodeSceneNameEmpty,
		CodeSceneMalformed,
		CodeSceneInvalid,
		CodeCharacterInvalidID,
		CodeFilterInvalid,
		CodePageSizeInvalid,
		CodePageTokenInvalid:
		return http.StatusBadRequest

	case CodeWriteGrantMissing,
		CodeWriteGrantInvalid,
		CodeWriteGrantExpired:
		return http.StatusUnauthorized

	case CodeWriteGrantMismatch:
		return http.StatusForbidden

	case CodeNotFound,
		CodeCharacterNotFound:
		return http.StatusNotFound

	case CodeAlreadyExists:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
