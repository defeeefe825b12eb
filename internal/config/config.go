// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	Addr         string
	GamesDir     string
	AssetsDir    string
	StaticDir    string
	OpenBrowser  bool
	BrowserDelay time.Duration
	GRPCAddr     string // empty disables the gRPC health server
	PollInterval time.Duration
}

// URL is the address the browser is pointed at.
func (c Config) URL() string {
	return "http://" + c.Addr + "/"
}

// Load reads configuration from, lowest to highest precedence: built-in
// defaults, an optional edugames.{yaml,toml,json} in the working directory,
// .env, EDUGAMES_* environment variables, and command-line flags.
func Load(args []string) (Config, error) {
	// Missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	flags := pflag.NewFlagSet("edugames", pflag.ContinueOnError)
	flags.String("addr", "127.0.0.1:5000", "HTTP listen address")
	flags.String("games-dir", "games", "directory holding one subdirectory per game")
	flags.String("assets-dir", "assets", "directory of shared assets")
	flags.String("static-dir", ".", "directory served under /static/")
	flags.Bool("open-browser", true, "open the default browser after startup")
	flags.Duration("browser-delay", 1250*time.Millisecond, "delay before opening the browser")
	flags.String("grpc-addr", "", "gRPC health listen address (empty disables)")
	flags.Duration("poll-interval", time.Second, "how often the games directory is re-read for live updates")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigName("edugames")
	v.AddConfigPath(".")
	v.SetEnvPrefix("EDUGAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"addr", "games-dir", "assets-dir", "static-dir", "open-browser", "browser-delay", "grpc-addr", "poll-interval"} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Addr:         v.GetString("addr"),
		OpenBrowser:  v.GetBool("open-browser"),
		BrowserDelay: v.GetDuration("browser-delay"),
		GRPCAddr:     v.GetString("grpc-addr"),
		PollInterval: v.GetDuration("poll-interval"),
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	var err error
	if cfg.GamesDir, err = resolveDir(v.GetString("games-dir")); err != nil {
		return Config{}, err
	}
	if cfg.AssetsDir, err = resolveDir(v.GetString("assets-dir")); err != nil {
		return Config{}, err
	}
	if cfg.StaticDir, err = resolveDir(v.GetString("static-dir")); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolveDir anchors relative directories at the working directory. The
// directory does not have to exist.
func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	return abs, nil
}
