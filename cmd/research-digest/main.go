// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-digest CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/logging"
	"github.com/pdiddy/research-digest/internal/secrets"
	"github.com/pdiddy/research-digest/internal/tracing"
	"github.com/pdiddy/research-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state, set once in PersistentPreRunE and read-only afterwards.
var (
	cfg             types.Config
	logger          = zap.NewNop()
	shutdownTracing = func(context.Context) error { return nil }
)

// rootCmd is the base command for the research-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "research-digest",
	Short: "Search arXiv and summarize papers with a language model",
	Long: `research-digest finds papers on arXiv and condenses each into a few factual
bullets using a language model.

The search and summarize stages are available on their own and exchange JSON
objects, so the output of "search" can be piped into "summarize". "digest"
runs both and renders a readable answer; "serve" exposes the same flow behind
a web form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = logger.Sync()
		return shutdownTracing(context.Background())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-digest.yaml or ~/.config/research-digest/research-digest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-digest"))
		}
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup loads configuration, secrets, logging and tracing exactly once.
func setup() error {
	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	l, err := logging.New(c.Log)
	if err != nil {
		return err
	}

	store, err := secrets.Load(secrets.DefaultDir, l)
	if err != nil {
		return err
	}
	if keys := store.Keys(); len(keys) > 0 {
		l.Debug("Loaded secrets", zap.Strings("keys", keys))
	}
	c.Model.APIKey = store.Resolve(c.Model.APIKey, secrets.AnthropicAPIKey, secrets.AnthropicAPIKeyEnv)

	shutdown, err := tracing.Initialize(c.Tracing, l)
	if err != nil {
		return err
	}

	cfg, logger, shutdownTracing = c, l, shutdown
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
