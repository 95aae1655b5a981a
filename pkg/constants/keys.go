package constants

// Context and response keys shared between middleware and handlers.
const (
	ContextKeyUser      = "user"
	ContextKeyToken     = "token"
	HeaderAuthorization = "Authorization"
	ResponseError       = "error"
	FieldMessage        = "message"
)

// Common column names used across repositories.
const (
	FieldID               = "id"
	FieldEmail            = "email"
	FieldName             = "name"
	FieldStatus           = "status"
	FieldCreatedDate      = "created_date"
	FieldLastModifiedDate = "last_modified_date"
)
