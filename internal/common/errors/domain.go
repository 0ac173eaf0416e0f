package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryInternal     ErrorCategory = "INTERNAL"
	CategoryExternal     ErrorCategory = "EXTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

// Is lets errors.Is match a wrapped copy against its sentinel.
func (e *domainError) Is(target error) bool {
	var de *domainError
	if errors.As(target, &de) {
		return de.code == e.code
	}
	return false
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidJWTSecret = NewDomainError(
		"INVALID_JWT_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"JWT_SECRET must be at least 32 bytes",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrPostNotFound = NewDomainError(
		"POST_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"post not found",
	)

	ErrConversationNotFound = NewDomainError(
		"CONVERSATION_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"conversation not found",
	)

	ErrTokenNotFound = NewDomainError(
		"TOKEN_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"token not found",
	)

	ErrUsernameAlreadyExists = NewDomainError(
		"USERNAME_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"username already exists",
	)

	ErrEmailAlreadyExists = NewDomainError(
		"EMAIL_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"email already exists",
	)

	ErrResetTokenPending = NewDomainError(
		"RESET_TOKEN_PENDING",
		CategoryConflict,
		http.StatusConflict,
		"a reset token was already issued, try again in an hour",
	)

	ErrInvalidUsername = NewDomainError(
		"INVALID_USERNAME",
		CategoryValidation,
		http.StatusBadRequest,
		"username must contain only lowercase letters, digits, underscores and dots",
	)

	ErrInvalidEmail = NewDomainError(
		"INVALID_EMAIL",
		CategoryValidation,
		http.StatusBadRequest,
		"invalid email address",
	)

	ErrWeakPassword = NewDomainError(
		"WEAK_PASSWORD",
		CategoryValidation,
		http.StatusBadRequest,
		"password does not meet the password policy",
	)

	ErrEmptyContent = NewDomainError(
		"EMPTY_CONTENT",
		CategoryValidation,
		http.StatusBadRequest,
		"content is empty",
	)

	ErrContentTooLong = NewDomainError(
		"CONTENT_TOO_LONG",
		CategoryValidation,
		http.StatusBadRequest,
		"content exceeds maximum length",
	)

	ErrSelfFollow = NewDomainError(
		"SELF_FOLLOW",
		CategoryValidation,
		http.StatusBadRequest,
		"cannot follow yourself",
	)

	ErrInvalidCredentials = NewDomainError(
		"INVALID_CREDENTIALS",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid credentials",
	)

	ErrInvalidToken = NewDomainError(
		"INVALID_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid",
	)

	ErrEmailNotVerified = NewDomainError(
		"EMAIL_NOT_VERIFIED",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"email address is not verified",
	)

	ErrAlreadyVerified = NewDomainError(
		"ALREADY_VERIFIED",
		CategoryValidation,
		http.StatusBadRequest,
		"user already verified",
	)

	ErrNotPostAuthor = NewDomainError(
		"NOT_POST_AUTHOR",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"only the author can delete this post",
	)

	ErrNotConversationMember = NewDomainError(
		"NOT_CONVERSATION_MEMBER",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"sender is not a member of this conversation",
	)

	ErrStoreFailure = NewDomainError(
		"STORE_FAILURE",
		CategoryInternal,
		http.StatusInternalServerError,
		"store operation failed",
	)

	ErrMailDelivery = NewDomainError(
		"MAIL_DELIVERY_FAILED",
		CategoryExternal,
		http.StatusInternalServerError,
		"failed to deliver email",
	)

	ErrUploadFailed = NewDomainError(
		"UPLOAD_FAILED",
		CategoryExternal,
		http.StatusInternalServerError,
		"failed to store uploaded file",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)
)
