package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	sessionMaxAgeVar  = "session_max_age"
	csrfKeyVar        = "csrf_key"
	secureCookiesVar  = "secure_cookies"
	credentialsKeyVar = "credentials_key"
)

type SecurityConfig interface {
	GetSessionMaxAge() time.Duration
	GetCSRFKey() []byte
	GetSecureCookies() bool
	GetCredentialsKey() string
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

// GetSessionMaxAge bounds how long an idle browser context is kept
func (s Security) GetSessionMaxAge() time.Duration {
	return s.v.GetDuration(sessionMaxAgeVar)
}

// GetCSRFKey must be 32 bytes long
func (s Security) GetCSRFKey() []byte {
	return []byte(s.v.GetString(csrfKeyVar))
}

func (s Security) GetSecureCookies() bool {
	return s.v.GetBool(secureCookiesVar)
}

// GetCredentialsKey seals the CLI credential file when set
func (s Security) GetCredentialsKey() string {
	return s.v.GetString(credentialsKeyVar)
}
