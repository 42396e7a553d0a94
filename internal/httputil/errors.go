package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Documentation links the services put in the "info" field of error bodies.
// They identify which service produced the error.
const (
	AuthErrorInfo  = "https://github.com/mozilla/fxa-auth-server/blob/master/docs/api.md#response-format"
	OAuthErrorInfo = "https://github.com/mozilla/fxa-oauth-server/blob/master/docs/api.md#errors"
)

// APIError is the error body returned by the identity and OAuth services.
type APIError struct {
	Code      int    `json:"code"`
	Errno     int    `json:"errno"`
	ErrorText string `json:"error,omitempty"`
	Message   string `json:"message"`
	Info      string `json:"info,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("%s (code %d, errno %d)", e.Message, e.Code, e.Errno)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// FromAuthServer reports whether the error came from the identity service.
func (e *APIError) FromAuthServer() bool {
	return e.Info == AuthErrorInfo
}

// FromOAuthServer reports whether the error came from the OAuth service.
func (e *APIError) FromOAuthServer() bool {
	return e.Info == OAuthErrorInfo
}

// decodeError builds an APIError from a failed response. Bodies that are not
// service errors are kept as the message.
func decodeError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" && apiErr.Errno == 0 {
		apiErr = &APIError{Message: strings.TrimSpace(string(raw))}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	if apiErr.Code == 0 {
		apiErr.Code = resp.StatusCode
	}
	if apiErr.ErrorText == "" {
		apiErr.ErrorText = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
