// Package root contains the root command for the application
package root

import (
	"fmt"
	"sync"
	"time"

	"fjacquet/payout-report/internal/config"
	"fjacquet/payout-report/internal/container"
	"fjacquet/payout-report/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to every command
type CommonFlags struct {
	ConfigFile string
	Start      string
	End        string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig is the configuration loaded by PersistentPreRunE
	AppConfig *config.Config

	// AppContainer is built on first use by GetContainer
	AppContainer *container.Container

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "payout-report",
		Short: "Generate the periodic payout year-to-date report.",
		Long: `payout-report reads periodic payout transactions for a report window,
correlates each one with the payout ledger and writes one CSV row per transaction
with year-to-date gross, federal and state amounts.`,
		SilenceUsage:       true,
		PersistentPreRunE:  persistentPreRun,
		PersistentPostRunE: persistentPostRun,
	}

	initOnce sync.Once
	mu       sync.Mutex
)

// Init registers the persistent flags. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default searches $HOME/.payout-report, .payout-report and .)")
		Cmd.PersistentFlags().StringVar(&SharedFlags.Start, "start", "", "Report window start (ISO date-time, overrides window.start)")
		Cmd.PersistentFlags().StringVar(&SharedFlags.End, "end", "", "Report window end (ISO date-time, overrides window.end)")
	})
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	config.LoadEnv(Log)

	cfg, err := config.Load(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if err := ApplyWindowFlags(cfg, SharedFlags); err != nil {
		return err
	}

	mu.Lock()
	AppConfig = cfg
	mu.Unlock()
	Log = config.NewLogger(cfg)
	return nil
}

func persistentPostRun(cmd *cobra.Command, args []string) error {
	return Close()
}

// ApplyWindowFlags overrides the configured window with non-empty flag values.
func ApplyWindowFlags(cfg *config.Config, flags CommonFlags) error {
	if flags.Start != "" {
		cfg.Window.Start = flags.Start
	}
	if flags.End != "" {
		cfg.Window.End = flags.End
	}
	if _, err := cfg.ReportWindow(timeNow()); err != nil {
		return fmt.Errorf("invalid report window: %w", err)
	}
	return nil
}

// GetConfig returns the loaded configuration, or nil before PersistentPreRunE.
func GetConfig() *config.Config {
	mu.Lock()
	defer mu.Unlock()
	return AppConfig
}

// GetContainer builds the application container on first use.
func GetContainer() (*container.Container, error) {
	mu.Lock()
	defer mu.Unlock()
	if AppContainer != nil {
		return AppContainer, nil
	}
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	c, err := container.NewContainer(AppConfig)
	if err != nil {
		return nil, err
	}
	AppContainer = c
	return c, nil
}

// Close releases the container if one was built.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if AppContainer == nil {
		return nil
	}
	err := AppContainer.Close()
	AppContainer = nil
	return err
}

var timeNow = time.Now
