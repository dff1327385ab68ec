// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tmsearch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tmsearch/internal/search"
	"github.com/pdiddy/tmsearch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the tmsearch CLI.
var rootCmd = &cobra.Command{
	Use:   "tmsearch",
	Short: "Search registered trademarks from the command line",
	Long: `tmsearch queries a trademark search endpoint by free text, country and
filters (status, owners, attorneys, law firms, classes) and prints the
results with facet counts and pagination.

Search parameters use the same query-string form as the web search page,
so a link such as "q=nike&status=Registered&page=2" can be passed as-is.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./tmsearch.yaml or ~/.config/tmsearch/tmsearch.yaml)")
	pf.String("base-url", search.DefaultBaseURL, "search endpoint base URL")
	pf.Duration("timeout", 10*time.Second, "HTTP timeout per search call, retries included")
	pf.Int("rows", types.DefaultRows, "results per page")
	pf.String("user-agent", "tmsearch/"+version, "User-Agent header")
	pf.Int("max-attempts", 1, "attempts per search on 429/503 responses (max 2)")
	pf.Float64("rate-limit", 0, "maximum searches per second (0 disables pacing)")
	pf.Duration("fetch-timeout", 10*time.Second, "deadline the controller puts on each fetch it starts")
	pf.Bool("keep-stale", false, "keep the last good results visible after a failed search")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"base_url":          "base-url",
		"timeout":           "timeout",
		"rows":              "rows",
		"user_agent":        "user-agent",
		"max_attempts":      "max-attempts",
		"rate_limit":        "rate-limit",
		"fetch_timeout":     "fetch-timeout",
		"keep_stale_result": "keep-stale",
		"log_level":         "log-level",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tmsearch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tmsearch"))
		}
	}

	viper.SetEnvPrefix("TMSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the configuration from flags, environment and file,
// in viper's usual order of precedence.
func loadConfig() types.Config {
	return types.Config{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("timeout"),
				UserAgent: viper.GetString("user_agent"),
			},
			BaseURL:     viper.GetString("base_url"),
			Rows:        viper.GetInt("rows"),
			MaxAttempts: viper.GetInt("max_attempts"),
			RateLimit:   viper.GetFloat64("rate_limit"),
		},
		Controller: types.ControllerConfig{
			FetchTimeout:    viper.GetDuration("fetch_timeout"),
			KeepStaleResult: viper.GetBool("keep_stale_result"),
		},
		LogLevel: viper.GetString("log_level"),
	}
}

// newLogger writes human-readable logs to stderr at the configured level.
// An unknown level falls back to warn.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
