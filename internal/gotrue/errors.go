package gotrue

import (
	"encoding/json"
	"net/http"

	"github.com/DukeRupert/authui/internal/domain"
)

// apiError covers the error shapes the backend has used across versions.
type apiError struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// decodeError converts a non-2xx response into a domain error whose message is
// the backend's own text.
func decodeError(op string, status int, body []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	message := apiErr.text()
	if message == "" {
		message = http.StatusText(status)
	}

	return &domain.Error{
		Code:    errorCode(status, apiErr),
		Op:      op,
		Message: message,
	}
}

func errorCode(status int, e apiError) string {
	switch e.ErrorCode {
	case "invalid_credentials", "otp_expired", "bad_jwt", "session_not_found":
		return domain.EUNAUTHORIZED
	case "user_already_exists", "email_exists", "phone_exists":
		return domain.ECONFLICT
	case "over_email_send_rate_limit", "over_sms_send_rate_limit", "over_request_rate_limit":
		return domain.ERATELIMIT
	}
	if e.Error == "invalid_grant" {
		return domain.EUNAUTHORIZED
	}

	switch {
	case status == http.StatusUnauthorized:
		return domain.EUNAUTHORIZED
	case status == http.StatusForbidden:
		return domain.EFORBIDDEN
	case status == http.StatusNotFound:
		return domain.ENOTFOUND
	case status == http.StatusConflict:
		return domain.ECONFLICT
	case status == http.StatusTooManyRequests:
		return domain.ERATELIMIT
	case status >= 500:
		return domain.EUNAVAILABLE
	default:
		return domain.EINVALID
	}
}
