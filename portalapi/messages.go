package portalapi

import (
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"github.com/rs/zerolog/log"
)

// DefaultMessage is shown when the backend gave nothing more specific.
const DefaultMessage = "Произошла ошибка на сервере"

var defaultTranslations = map[ErrorCode]string{
	CodeDuplicateApplication:    "У вас уже есть заявление на выбранную специальность.",
	CodeAttemptsExhausted:       "Вы исчерпали максимальное количество попыток подачи (3) на эту специальность.",
	CodeInvalidCredentials:      "Неверный email или пароль.",
	CodePermissionDenied:        "У вас нет доступа к этой операции.",
	CodeProfileRequired:         "Вы должны заполнить профиль абитуриента перед подачей заявления.",
	CodeUserEmailExists:         "Пользователь с таким email уже существует.",
	CodeOrganizationEmailExists: "Организация с таким email уже существует.",
	CodeServerError:             DefaultMessage,
}

// Messages maps error codes to localized user-facing text.
type Messages struct {
	trans ut.Translator
}

// NewMessages builds the ru catalogue.
func NewMessages() *Messages {
	locale := ru.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator(locale.Locale())

	for code, text := range defaultTranslations {
		if err := trans.Add(string(code), text, false); err != nil {
			log.Err(err).Str("code", string(code)).Msg("Failed to register error translation")
		}
	}
	return &Messages{trans: trans}
}

// Translator exposes the underlying translator so form validation can share it.
func (m *Messages) Translator() ut.Translator {
	return m.trans
}

// Lookup returns the localized text for code.
func (m *Messages) Lookup(code ErrorCode) (string, bool) {
	if code == CodeUnknown {
		return "", false
	}
	text, err := m.trans.T(string(code))
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

// Default returns the generic server error text.
func (m *Messages) Default() string {
	if text, ok := m.Lookup(CodeServerError); ok {
		return text
	}
	return DefaultMessage
}

// Normalize turns a non-2xx response into an *Error. A code sent by the
// backend wins over the legacy sentence lookup; unrecognized messages pass
// through unchanged.
func (m *Messages) Normalize(status int, body []byte) *Error {
	code, raw := extractMessage(body)
	if raw == "" {
		return &Error{Status: status, Code: CodeServerError, Message: m.Default()}
	}

	if _, known := defaultTranslations[code]; !known {
		code = legacyCodes[raw]
	}

	apiErr := &Error{Status: status, Code: code, Message: raw}
	if text, ok := m.Lookup(code); ok {
		apiErr.Message = text
	}
	if code == CodeInvalidCredentials {
		apiErr.Err = perrors.ErrInvalidCredentials
	}
	return apiErr
}

// Transport wraps a failure that produced no response. The cause stays
// reachable through errors.Is, including context cancellation.
func (m *Messages) Transport(err error) *Error {
	return &Error{Code: CodeServerError, Message: m.Default(), Err: err}
}
