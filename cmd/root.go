package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/config"
)

var (
	configPath string
	rootDir    string
)

var rootCmd = &cobra.Command{
	Use:   "optimize-images",
	Short: "Re-encode documentation images in place to shrink them",
	Long: "optimize-images walks the image directory (docs/images by default) and rewrites every\n" +
		"JPEG, PNG and WEBP file in place with size-tuned encoder settings.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOptimize,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML file with encoder settings")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "image directory (default \""+config.DefaultRoot+"\")")
}

// loadConfig applies the --config file and the --root override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if rootDir != "" {
		cfg.Root = rootDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
