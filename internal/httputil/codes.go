package httputil

// Machine-readable error codes returned alongside human-readable messages.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"
	CodeTooManyRequests    = "too_many_requests"
	CodeCooldownActive     = "cooldown_active"

	CodeEmailRequired       = "email_required"
	CodeNameRequired        = "name_required"
	CodeDateOfBirthRequired = "date_of_birth_required"
	CodeInvalidAge          = "invalid_age"
	CodePasswordRequired    = "password_required"
	CodePasswordTooShort    = "password_too_short"
	CodePasswordMismatch    = "password_mismatch"
	CodeInvalidEmailFormat  = "invalid_email_format"
	CodeEmailAlreadyExists  = "email_already_exists"
	CodeInvalidCredentials  = "invalid_credentials"

	CodeRefreshTokenRequired = "refresh_token_required"
	CodeInvalidRefreshToken  = "invalid_refresh_token"
	CodeInvalidAuthHeader    = "invalid_auth_header"
	CodeMissingAuth          = "missing_auth"
	CodeTokenExpired         = "token_expired"
	CodeInvalidToken         = "invalid_token"
	CodeInvalidTokenUserID   = "invalid_token_user_id"

	CodeEmailNotFound    = "email_not_found"
	CodeDeliveryFailure  = "delivery_failure"
	CodeInvalidResetCode = "invalid_or_expired_code"

	CodeMissingFields       = "missing_fields"
	CodeInvalidMobileNumber = "invalid_mobile_number"
	CodeInvalidDocumentType = "invalid_document_type"

	CodeAssistantUnavailable = "assistant_unavailable"
	CodeMessageRequired      = "message_required"

	CodeInvalidPage   = "invalid_page"
	CodeLoginRequired = "login_required"
)
