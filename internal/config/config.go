package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	APIConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetMediaBaseURL() string
	GetRollbarToken() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	API
}

// New loads the optional .env.<env> file and returns the configuration
// backed by the process environment.
func New() Config {
	env := strings.ToUpper(os.Getenv(envVar))
	if env == "" {
		env = "DEV"
	}
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Warn().Err(err).Str("path", dotEnvPath).Msg("Failed to load env file")
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds the configuration from an existing viper instance,
// applying the portal defaults first.
func FromViper(v *viper.Viper) Config {
	setDefaults(v)
	return mainConfig{
		EnvVars:  EnvVars{v: v},
		Cors:     Cors{v: v},
		Security: Security{v: v},
		API:      API{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault(portEnvVar, "8080")
	v.SetDefault(appNameVar, "Admissions Portal")
	v.SetDefault(envVar, "DEV")
	v.SetDefault(logLevelVar, "info")
	v.SetDefault(mediaBaseURLVar, "http://localhost:8000")
	v.SetDefault(rollbarTokenVar, "")

	v.SetDefault(allowedOriginsVar, []string{"http://localhost:8080"})

	v.SetDefault(sessionMaxAgeVar, 24*time.Hour)
	v.SetDefault(csrfKeyVar, "dev-csrf-key-please-override-32b")
	v.SetDefault(secureCookiesVar, false)
	v.SetDefault(credentialsKeyVar, "")

	v.SetDefault(apiBaseURLVar, "http://localhost:8000/api/")
	v.SetDefault(apiTimeoutVar, 15*time.Second)
	v.SetDefault(taskPollIntervalVar, 3*time.Second)
	v.SetDefault(queryCacheSizeVar, 128)
	v.SetDefault(queryCacheTTLVar, time.Minute)
}
