package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeSceneIDEmpty       = "SCENE_ID_EMPTY"
	CodeSceneNameEmpty     = "SCENE_NAME_EMPTY"
	CodeSceneMalformed     = "SCENE_MALFORMED"
	CodeSceneInvalid       = "SCENE_INVALID"
	CodeCharacterNotFound  = "CHARACTER_NOT_FOUND"
	CodeCharacterInvalidID = "CHARACTER_INVALID_ID"
	CodeFilterInvalid      = "FILTER_INVALID"
	CodePageSizeInvalid    = "PAGE_SIZE_INVALID"
	CodePageTokenInvalid   = "PAGE_TOKEN_INVALID"
	CodeWriteGrantMissing  = "WRITE_GRANT_MISSING"
	CodeWriteGrantInvalid  = "WRITE_GRANT_INVALID"
	CodeWriteGrantExpired  = "WRITE_GRANT_EXPIRED"
	CodeWriteGrantMismatch = "WRITE_GRANT_MISMATCH"
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeUnknown            = "UNKNOWN"
)

var enUSMessages = map[Code]string{
	CodeSceneIDEmpty:       "A scene id is required.",
	CodeSceneNameEmpty:     "A scene name is required.",
	CodeSceneMalformed:     "The scene document could not be read: {{.Reason}}",
	CodeSceneInvalid:       "The scene has {{.Count}} problem(s); first: {{.First}}",
	CodeCharacterNotFound:  "Character {{.ID}} was not found.",
	CodeCharacterInvalidID: "{{.ID}} is not a valid character id.",
	CodeFilterInvalid:      "The filter could not be parsed: {{.Reason}}",
	CodePageSizeInvalid:    "Page size must be between 1 and {{.Max}}.",
	CodePageTokenInvalid:   "The page token is not valid.",
	CodeWriteGrantMissing:  "A writer grant is required for this request.",
	CodeWriteGrantInvalid:  "The writer grant is not valid.",
	CodeWriteGrantExpired:  "The writer grant has expired.",
	CodeWriteGrantMismatch: "The writer grant does not match this service ({{.Field}}).",
	CodeNotFound:           "The requested {{.Resource}} was not found.",
	CodeAlreadyExists:      "The {{.Resource}} already exists.",
	CodeUnknown:            "Something went wrong.",
}
