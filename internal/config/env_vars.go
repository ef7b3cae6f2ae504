package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	portEnvVar      = "port"
	appNameVar      = "app_name"
	envVar          = "env"
	logLevelVar     = "log_level"
	mediaBaseURLVar = "media_base_url"
	rollbarTokenVar = "rollbar_token"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.v.GetString(portEnvVar)
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameVar)
}

// GetEnv returns DEV, TEST, QA or PROD.
func (e EnvVars) GetEnv() string {
	env := strings.ToUpper(e.v.GetString(envVar))
	if env == "" {
		return "DEV"
	}
	return env
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(logLevelVar)
}

// GetMediaBaseURL is prefixed to relative media paths returned by the backend
func (e EnvVars) GetMediaBaseURL() string {
	return strings.TrimSuffix(e.v.GetString(mediaBaseURLVar), "/")
}

// GetRollbarToken returns an empty string when error reporting is disabled
func (e EnvVars) GetRollbarToken() string {
	return e.v.GetString(rollbarTokenVar)
}
