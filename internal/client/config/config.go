package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// VersionToken in a shell resource path is replaced by the escaped app
// version, so versioned assets are refetched when the version changes.
const VersionToken = "{v}"

// Config holds runtime settings for the coffeelog client.
//
// Units: OnlineCheckInterval and RequestTimeout are time.Durations.
type Config struct {
	ServerURL           string        `env:"COFFEELOG_SERVER_URL"`
	DatabasePath        string        `env:"COFFEELOG_DB"`
	OnlineCheckInterval time.Duration `env:"COFFEELOG_ONLINE_CHECK_INTERVAL"`
	RequestTimeout      time.Duration `env:"COFFEELOG_REQUEST_TIMEOUT"`
	Offline             bool          `env:"COFFEELOG_OFFLINE"`
	AppVersion          string        `env:"COFFEELOG_APP_VERSION"`
	ShellResources      []string      `env:"COFFEELOG_SHELL" env-separator:","`
	ProxyAddr           string        `env:"COFFEELOG_PROXY_ADDR"`
	LogLevel            string        `env:"COFFEELOG_LOG_LEVEL"`
	LogFormat           string        `env:"COFFEELOG_LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DatabasePath = "coffeelog.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.Offline = false
	c.AppVersion = "0.1"
	c.ShellResources = DefaultShell()
	c.ProxyAddr = "127.0.0.1:8080"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// DefaultShell lists the pages, styles, scripts and data the web UI needs to
// start without a network.
func DefaultShell() []string {
	return []string{
		"/",
		"/create",
		"/view",
		"/settings",
		"/static/css/styles.css?v=" + VersionToken,
		"/static/css/colors.css?v=" + VersionToken,
		"/static/css/typo.css?v=" + VersionToken,
		"/static/js/app.js?v=" + VersionToken,
		"/static/js/idb.js?v=" + VersionToken,
		"/static/data/taste_tags.json?v=" + VersionToken,
		"/manifest.json?v=" + VersionToken,
		"/static/icons/brew-method/espresso.png?v=" + VersionToken,
		"/static/icons/brew-method/v60.png?v=" + VersionToken,
		"/static/icons/brew-method/aeropress.png?v=" + VersionToken,
		"/static/icons/brew-method/chemex.png?v=" + VersionToken,
		"/static/icons/brew-method/french-press.png?v=" + VersionToken,
		"/static/icons/brew-method/cupping.png?v=" + VersionToken,
		"/static/icons/icon-192.png",
		"/static/icons/icon-512.png",
	}
}

// Shell returns ShellResources with the version token substituted.
func (c *Config) Shell() []string {
	v := url.QueryEscape(c.AppVersion)
	out := make([]string, 0, len(c.ShellResources))
	for _, p := range c.ShellResources {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ReplaceAll(p, VersionToken, v))
		}
	}
	return out
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then COFFEELOG_* environment variables, then flags. Later
// sources win. Arguments that are not configuration flags are returned for
// the command tree.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}
