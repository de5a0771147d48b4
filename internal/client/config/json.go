package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/coffeelog/internal/flagx"
	"github.com/dmitrijs2005/coffeelog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the current value alone; intervals use timex.Duration so they may be
// strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	DatabasePath        *string         `json:"database_path"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	Offline             *bool           `json:"offline"`
	AppVersion          *string         `json:"app_version"`
	ShellResources      []string        `json:"shell_resources"`
	ProxyAddr           *string         `json:"proxy_addr"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&cfg.ServerURL, jc.ServerURL)
	setIf(&cfg.DatabasePath, jc.DatabasePath)
	setIf(&cfg.Offline, jc.Offline)
	setIf(&cfg.AppVersion, jc.AppVersion)
	setIf(&cfg.ProxyAddr, jc.ProxyAddr)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.LogFormat, jc.LogFormat)
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ShellResources != nil {
		cfg.ShellResources = jc.ShellResources
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
