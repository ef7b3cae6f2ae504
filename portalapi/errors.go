package portalapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
)

// ErrorCode is a stable identifier of a backend business error.
type ErrorCode string

const (
	CodeUnknown                 ErrorCode = ""
	CodeDuplicateApplication    ErrorCode = "duplicate_application"
	CodeAttemptsExhausted       ErrorCode = "attempts_exhausted"
	CodeInvalidCredentials      ErrorCode = "invalid_credentials"
	CodePermissionDenied        ErrorCode = "permission_denied"
	CodeProfileRequired         ErrorCode = "profile_required"
	CodeUserEmailExists         ErrorCode = "user_email_exists"
	CodeOrganizationEmailExists ErrorCode = "organization_email_exists"
	CodeServerError             ErrorCode = "server_error"
)

// legacyCodes classifies the English sentences the backend sends today.
var legacyCodes = map[string]ErrorCode{
	"You have already applied to this specialty in this building.":                        CodeDuplicateApplication,
	"You have reached the maximum number of application attempts (3) for this specialty.": CodeAttemptsExhausted,
	"Invalid credentials":                                                                 CodeInvalidCredentials,
	"Permission denied":                                                                   CodePermissionDenied,
	"You must fill out your applicant profile before submitting an application.":          CodeProfileRequired,
	"Пользователь с таким email уже существует":                                           CodeUserEmailExists,
	"Organization with this email already exists.":                                        CodeOrganizationEmailExists,
}

// Error is returned by every failed client call. Error() is the message to
// show to the user.
type Error struct {
	Status  int       // HTTP status, 0 when no response was received
	Code    ErrorCode // CodeUnknown when the backend message was not recognized
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if perrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether the backend rejected the credentials.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

type errorPayload struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// extractMessage reads the code and the raw message of an error body: the
// message field, else the joined values of the errors object, else the
// compacted JSON body.
func extractMessage(body []byte) (ErrorCode, string) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return CodeUnknown, ""
	}

	var payload errorPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return CodeUnknown, rawJSON(trimmed)
	}
	if payload.Message != "" {
		return payload.Code, payload.Message
	}
	if joined := joinErrorValues(payload.Errors); joined != "" {
		return payload.Code, joined
	}
	return payload.Code, rawJSON(trimmed)
}

// joinErrorValues flattens the values of a field-keyed errors object in
// document order and joins them with ", ".
func joinErrorValues(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	values, err := orderedValues(raw)
	if err != nil {
		return ""
	}

	var parts []string
	for _, v := range values {
		var list []json.RawMessage
		if err := json.Unmarshal(v, &list); err == nil {
			for _, item := range list {
				parts = append(parts, scalarText(item))
			}
			continue
		}
		parts = append(parts, scalarText(v))
	}
	return strings.Join(parts, ", ")
}

// orderedValues returns the member values of a JSON object in the order they appear.
func orderedValues(raw json.RawMessage) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, perrors.ErrInvalidRequest
	}

	var values []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return nil, err
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func scalarText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return rawJSON(v)
}

func rawJSON(b []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return string(bytes.TrimSpace(b))
	}
	return buf.String()
}
