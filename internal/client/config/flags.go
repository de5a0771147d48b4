package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/coffeelog/internal/flagx"
)

var (
	valueFlags = []string{"-s", "-d", "-i", "-t", "-v", "-proxy", "-log-level", "-log-format", "-c", "-config"}
	boolFlags  = []string{"-offline"}
)

// parseFlags applies the configuration flags found in args and returns the
// remaining arguments.
//
//	-s string       base URL of the coffeelog server
//	-d string       path of the local database file
//	-i int          online check interval (seconds)
//	-t duration     timeout of a single remote request
//	-offline        never contact the server
//	-v string       app version (selects the cache namespace)
//	-proxy string   listen address of the offline proxy
//	-log-level, -log-format
func parseFlags(cfg *Config, args []string) ([]string, error) {
	kept, rest := flagx.Split(args, valueFlags, boolFlags)

	fs := flag.NewFlagSet("coffeelog", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the coffeelog server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database file")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "remote request timeout")
	fs.BoolVar(&cfg.Offline, "offline", cfg.Offline, "work offline")
	fs.StringVar(&cfg.AppVersion, "v", cfg.AppVersion, "app version")
	fs.StringVar(&cfg.ProxyAddr, "proxy", cfg.ProxyAddr, "offline proxy listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text|json)")
	fs.String("c", "", "path to config file (short)")
	fs.String("config", "", "path to config file")

	if err := fs.Parse(kept); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	if seen["i"] {
		cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	}
	return rest, nil
}
