package minty

import (
	"context"
	"os"
	"os/signal"

	"github.com/kerbaras/minty/pkg/app"
	"github.com/kerbaras/minty/pkg/config"
	"github.com/kerbaras/minty/pkg/services"
	"github.com/spf13/cobra"
)

var flags struct {
	backend  string
	dataDir  string
	store    string
	logLevel string
	start    string
}

var rootCmd = &cobra.Command{
	Use:   "minty",
	Short: "Minty Comics in your terminal",
	Long:  "Browse, read, bookmark and export comics from Minty Comics with a TUI and CLI",
	Run: func(cmd *cobra.Command, args []string) {
		// Launch TUI by default
		controller := openController(cmd)
		defer controller.Close()

		a := app.NewApp(controller).WithStartPath(flags.start)
		if err := a.Run(cmd.Context()); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.backend, "backend", "", "Backend origin (overrides "+config.EnvBackendURL+")")
	pf.StringVar(&flags.dataDir, "data-dir", "", "Directory for the token store and log file (overrides "+config.EnvDataDir+")")
	pf.StringVar(&flags.store, "store", "", "Token store driver, duckdb or sqlite (overrides "+config.EnvStore+")")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (overrides "+config.EnvLogLevel+")")

	rootCmd.Flags().StringVar(&flags.start, "open", "/", "Route to open the TUI on, e.g. /search or /comic/42")
}

// loadConfig resolves defaults, .env, environment and flags, in that order.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.backend != "" {
		cfg.BackendURL = flags.backend
	}
	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	if flags.store != "" {
		cfg.Store = flags.store
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, cfg.Validate()
}

func openController(cmd *cobra.Command) *services.Controller {
	cfg, err := loadConfig()
	cobra.CheckErr(err)

	controller, err := services.NewController(cmd.Context(), cfg)
	cobra.CheckErr(err)
	return controller
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
