package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mindflowai/mindflow/internal/client/auth"
	"github.com/mindflowai/mindflow/internal/config"
	"github.com/mindflowai/mindflow/internal/logging"
	"github.com/mindflowai/mindflow/internal/storage"
)

// Version is overridden at build time with -ldflags "-X .../commands.Version=..."
var Version = "0.1.0"

var (
	// Global flags
	flagURL       string
	flagToken     string
	flagJSON      bool
	flagVerbose   bool
	flagTimeout   time.Duration
	flagYes       bool
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	// Populated by loadConfig before any subcommand runs
	cfg    *config.Config
	logger = logging.Discard()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mindflow",
	Short: "Mindflow CLI client",
	Long: `mindflow authenticates with the Mindflow service and resolves local files
into content-addressed references for upload.

Files inside a git repository are listed from the git index; other directories
are walked recursively. Files that cannot be read or are not UTF-8 are skipped.`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentPreRunE = loadConfig

	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Server URL (or use MINDFLOW_URL env var)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Authorization token (or use MINDFLOW_TOKEN env var)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "HTTP request timeout")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to configuration file (default $HOME/.config/mindflow/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format: text or json")
}

// bindFlags maps persistent flags onto config keys
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"url":            "url",
		"token":          "token",
		"timeout":        "timeout",
		"logging.level":  "log-level",
		"logging.format": "log-format",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig builds cfg and logger from flags, environment and config file
func loadConfig(cmd *cobra.Command, args []string) error {
	v := config.NewViper()
	if err := bindFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	if err := config.ReadConfigFile(v, flagConfig, homeDir()); err != nil {
		return err
	}

	loaded, err := config.LoadWithViper(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if flagVerbose {
		loaded.Logging.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	logger = logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	logger.Debug("Configuration loaded",
		"command", cmd.Name(),
		"url", cfg.URL,
		"storage_uri", cfg.Storage.URI,
		"git", cfg.Resolve.Git,
		"jobs", cfg.Resolve.Jobs)
	return nil
}

// openStore opens the staging outbox named by the configuration
func openStore() (storage.Store, error) {
	uri, err := cfg.StorageURI(homeDir())
	if err != nil {
		return nil, err
	}
	logger.Debug("Opening staging store", "uri", uri.String())
	return storage.NewStorage(uri, logger)
}

func homeDir() string {
	return os.Getenv(auth.HomeEnvVar)
}
