package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storyengine/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "storyengine",
	Short: "storyengine enriches articles and synthesizes financial-news stories",
	Long: `storyengine runs the feature-enrichment, interaction-scoring,
graph-clustering, and LLM-driven story-synthesis pipeline described in
its design docs: articles in, validated and tracked stories out.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./storyengine.yaml)")
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newMigrateCmd())
}

// loadConfig reads configuration and sets the logger's level before any
// component calls logger.Get(), so App.LogLevel takes effect exactly once
// at process startup.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	setLogLevel(cfg.App.LogLevel)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
