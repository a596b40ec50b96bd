// Command pubsite builds and previews a pubsite blog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/views"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
	envName    string
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "pubsite",
	Short:         "A static blog generator built with Go and templ",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; real environment variables still apply.
		_ = godotenv.Load()

		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./site.yaml)")
	rootCmd.PersistentFlags().StringVarP(&envName, "env", "e", "", "Deployment target: production, staging or development (overrides PUBSITE_ENV)")

	rootCmd.AddCommand(buildCmd, serveCmd, newCmd, versionCmd)
}

// loadSite reads the config and applies the --env override.
func loadSite(opts ...pubsite.Option) (*pubsite.Site, error) {
	cfg, err := pubsite.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if envName != "" {
		target, err := pubsite.ParseTarget(envName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pubsite.WithTarget(target))
	}
	opts = append([]pubsite.Option{pubsite.WithLogger(logger)}, opts...)
	return pubsite.New(cfg, views.Funcs(), opts...), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
