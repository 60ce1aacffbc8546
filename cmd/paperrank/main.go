// Package main is the entry point for the paperrank web UI and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paperrank/app/internal/config"
	"github.com/paperrank/app/internal/logger"
	"github.com/paperrank/app/pkg/webhook"
)

var rootCmd = &cobra.Command{
	Use:   "paperrank",
	Short: "Search form and result viewer for the PaperRank ranking webhook",
	Long: `paperrank collects a research topic and a ranking style, forwards them to
the PaperRank automation webhook and shows the ranked papers it returns.

Run "paperrank serve" for the web UI or "paperrank search" for a one-shot
terminal search.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperrank.yaml)")
	rootCmd.PersistentFlags().String("webhook-url", "", "ranking webhook URL (env WEBHOOK_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (env LOG_LEVEL)")

	viper.BindPFlag("webhook_url", rootCmd.PersistentFlags().Lookup("webhook-url"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperrank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	config.SetDefaults(viper.GetViper())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup loads the configuration and builds the logger and webhook client
// shared by every subcommand. The returned cleanup closes the log file.
func setup() (*config.Config, *logrus.Logger, *webhook.Client, func(), error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, nil, nil, err
	}

	log, closer, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	client := webhook.NewClient(cfg.Webhook.URL,
		webhook.WithTimeout(cfg.Webhook.Timeout),
		webhook.WithUserAgent(cfg.Webhook.UserAgent),
		webhook.WithRateLimit(cfg.Webhook.RateLimit, cfg.Webhook.RateBurst),
	)
	return cfg, log, client, func() { closer.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
