package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	apiBaseURLVar       = "api_base_url"
	apiTimeoutVar       = "api_timeout"
	taskPollIntervalVar = "task_poll_interval"
	queryCacheSizeVar   = "query_cache_size"
	queryCacheTTLVar    = "query_cache_ttl"
)

// APIConfig describes how the portal reaches the admissions REST backend.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetTaskPollInterval() time.Duration
	GetQueryCacheSize() int
	GetQueryCacheTTL() time.Duration
}

type API struct {
	v *viper.Viper
}

var _ APIConfig = API{}

// GetAPIBaseURL always ends with a slash so relative endpoint paths resolve under it
func (a API) GetAPIBaseURL() string {
	base := a.v.GetString(apiBaseURLVar)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func (a API) GetAPITimeout() time.Duration {
	return a.v.GetDuration(apiTimeoutVar)
}

func (a API) GetTaskPollInterval() time.Duration {
	interval := a.v.GetDuration(taskPollIntervalVar)
	if interval <= 0 {
		return 3 * time.Second
	}
	return interval
}

func (a API) GetQueryCacheSize() int {
	size := a.v.GetInt(queryCacheSizeVar)
	if size <= 0 {
		return 128
	}
	return size
}

func (a API) GetQueryCacheTTL() time.Duration {
	return a.v.GetDuration(queryCacheTTLVar)
}
