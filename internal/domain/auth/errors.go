package auth

import "errors"

// Application error codes attached to AppError values. The HTTP layer maps
// them to response statuses.
const (
	CodeInvalidInput       = "invalid_input"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeTokenDenied        = "token_denied"
	CodeUserNotFound       = "user_not_found"
	CodeEmailExists        = "email_exists"
	CodeUpstream           = "upstream_error"
	CodeStore              = "store_error"
)

// ErrEmailExists indicates a duplicate email address.
var ErrEmailExists = errors.New("email already exists")
