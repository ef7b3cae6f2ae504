package portalapi_test

import (
	"errors"
	"net/http"
	"testing"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/stretchr/testify/require"
)

func TestMessages_Normalize(t *testing.T) {
	m := portalapi.NewMessages()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode portalapi.ErrorCode
		wantMsg  string
	}{
		{
			name:     "mapped message",
			status:   http.StatusBadRequest,
			body:     `{"message":"Organization with this email already exists."}`,
			wantCode: portalapi.CodeOrganizationEmailExists,
			wantMsg:  "Организация с таким email уже существует.",
		},
		{
			name:     "invalid credentials",
			status:   http.StatusUnauthorized,
			body:     `{"message":"Invalid credentials"}`,
			wantCode: portalapi.CodeInvalidCredentials,
			wantMsg:  "Неверный email или пароль.",
		},
		{
			name:     "unmapped message passes through",
			status:   http.StatusBadRequest,
			body:     `{"message":"No budget places available for this specialty."}`,
			wantCode: portalapi.CodeUnknown,
			wantMsg:  "No budget places available for this specialty.",
		},
		{
			name:     "stable code wins over wording",
			status:   http.StatusBadRequest,
			body:     `{"code":"attempts_exhausted","message":"Attempts are over"}`,
			wantCode: portalapi.CodeAttemptsExhausted,
			wantMsg:  "Вы исчерпали максимальное количество попыток подачи (3) на эту специальность.",
		},
		{
			name:     "unknown code falls back to wording",
			status:   http.StatusForbidden,
			body:     `{"code":"E42","message":"Permission denied"}`,
			wantCode: portalapi.CodePermissionDenied,
			wantMsg:  "У вас нет доступа к этой операции.",
		},
		{
			name:     "errors object joined in order",
			status:   http.StatusBadRequest,
			body:     `{"errors":{"password":["Too short","Too common"],"email":"Enter a valid email address."}}`,
			wantCode: portalapi.CodeUnknown,
			wantMsg:  "Too short, Too common, Enter a valid email address.",
		},
		{
			name:     "errors value mapped after join",
			status:   http.StatusBadRequest,
			body:     `{"errors":{"email":["Пользователь с таким email уже существует"]}}`,
			wantCode: portalapi.CodeUserEmailExists,
			wantMsg:  "Пользователь с таким email уже существует.",
		},
		{
			name:     "raw JSON when nothing else",
			status:   http.StatusNotFound,
			body:     `{"error": "Application not found"}`,
			wantCode: portalapi.CodeUnknown,
			wantMsg:  `{"error":"Application not found"}`,
		},
		{
			name:     "empty body",
			status:   http.StatusInternalServerError,
			body:     ``,
			wantCode: portalapi.CodeServerError,
			wantMsg:  "Произошла ошибка на сервере",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Normalize(tt.status, []byte(tt.body))
			require.Equal(t, tt.status, err.Status)
			require.Equal(t, tt.wantCode, err.Code)
			require.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestMessages_InvalidCredentialsIsSentinel(t *testing.T) {
	err := portalapi.NewMessages().Normalize(http.StatusUnauthorized, []byte(`{"message":"Invalid credentials"}`))
	require.True(t, perrors.Is(err, perrors.ErrInvalidCredentials))
}

func TestMessages_Transport(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := portalapi.NewMessages().Transport(cause)

	require.Equal(t, "Произошла ошибка на сервере", err.Error())
	require.ErrorIs(t, err, cause)
	require.Zero(t, err.Status)
}

func TestMessages_Lookup(t *testing.T) {
	m := portalapi.NewMessages()

	text, ok := m.Lookup(portalapi.CodeProfileRequired)
	require.True(t, ok)
	require.Equal(t, "Вы должны заполнить профиль абитуриента перед подачей заявления.", text)

	_, ok = m.Lookup(portalapi.CodeUnknown)
	require.False(t, ok)
}
