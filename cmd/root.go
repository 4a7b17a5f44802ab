package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ceald/senhas/internal/app"
	"github.com/ceald/senhas/internal/clock"
	"github.com/ceald/senhas/internal/config"
	"github.com/ceald/senhas/internal/gate"
	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/ticketing"
	"github.com/ceald/senhas/internal/tracing"
	"github.com/ceald/senhas/internal/ui/styles"
	"github.com/ceald/senhas/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "senhas",
	Short: "Kiosk that hands out CEALD attendance numbers",
	Long: `A terminal kiosk where guests register a name and phone number and
receive their position in the CEALD attendance queue.

Registration is only offered while the window is open (see window.mode in
the config file). Edits to the config file are picked up while running.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runKiosk,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .senhas/config.yaml, then ~/.config/senhas/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also SENHAS_DEBUG=1); ctrl+x shows it in the kiosk")
}

func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .senhas/config.yaml (current directory)
		// 2. ~/.config/senhas/config.yaml (user config)
		if _, err := os.Stat(config.LocalConfigPath); err == nil {
			viper.SetConfigFile(config.LocalConfigPath)
		} else if userPath := config.UserConfigPath(); userPath != "" {
			viper.AddConfigPath(filepath.Dir(userPath))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file found anywhere - create default at .senhas/config.yaml
			if writeErr := config.WriteDefaultConfig(config.LocalConfigPath); writeErr == nil {
				viper.SetConfigFile(config.LocalConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		} else {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil && configErr == nil {
		configErr = fmt.Errorf("decoding config: %w", err)
	}
}

// loadedConfig returns the config read by initConfig, validated.
func loadedConfig() (config.Config, error) {
	if configErr != nil {
		return config.Config{}, configErr
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// configPath is the file in use, or the default local path when none was
// read.
func configPath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return config.LocalConfigPath
}

func debugEnabled() bool {
	return debugFlag || log.Enabled()
}

// setupLogging opens the debug log when debugging is on.
func setupLogging(c config.Config) (func(), error) {
	if !debugEnabled() {
		return func() {}, nil
	}
	cleanup, err := log.Init(c.Log.File, log.ParseLevel(c.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "senhas starting", "version", version, "config", configPath())
	return cleanup, nil
}

// setupTracing builds the tracer provider. The returned func flushes it.
func setupTracing(c config.Config) (*tracing.Provider, func(), error) {
	provider, err := tracing.NewProvider(c.TracingConfig(configPath()))
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return provider, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
		}
	}, nil
}

func newClient(c config.Config, provider *tracing.Provider) *ticketing.Client {
	return ticketing.New(c.API.BaseURL,
		ticketing.WithTimeout(c.API.Timeout),
		ticketing.WithTracer(provider.Tracer()),
	)
}

// reloader reads path again and rebuilds the gate policy. The API client is
// kept: base URL changes need a restart.
func reloader(path string, client *ticketing.Client) app.ReloadFunc {
	return func() (app.Reload, error) {
		next, err := config.Load(path)
		if err != nil {
			return app.Reload{}, err
		}
		if next.API.BaseURL != client.BaseURL() {
			log.Warn(log.CatConfig, "api.base_url changed, restart to apply", "running", client.BaseURL(), "configured", next.API.BaseURL)
		}
		policy, err := gate.NewPolicy(next.WindowSpec(), client, clock.Real())
		if err != nil {
			return app.Reload{}, err
		}
		return app.Reload{Policy: next.Policy(), Gate: policy}, nil
	}
}

func runKiosk(_ *cobra.Command, _ []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	cleanupLog, err := setupLogging(c)
	if err != nil {
		return err
	}
	defer cleanupLog()

	provider, shutdownTracing, err := setupTracing(c)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	styles.ApplyTheme(c.UI.Accent, "", "")

	client := newClient(c, provider)
	policy, err := gate.NewPolicy(c.WindowSpec(), client, clock.Real())
	if err != nil {
		return fmt.Errorf("building window policy: %w", err)
	}
	monitor := gate.NewMonitor(policy, clock.Real())

	opts := []app.Option{
		app.WithMarkdownStyle(c.UI.MarkdownStyle),
		app.WithDebug(debugEnabled()),
	}

	path := configPath()
	if w, err := watcher.New(watcher.DefaultConfig(path)); err == nil {
		if err := w.Start(); err == nil {
			opts = append(opts, app.WithConfigWatcher(w, reloader(path, client)))
		} else {
			log.Warn(log.CatWatcher, "config reload disabled", "error", err)
			_ = w.Stop()
		}
	}
	// The kiosk works without reload if the watcher cannot be created.

	zone.NewGlobal()
	model := app.New(client, c.Policy(), monitor, opts...)
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Stops the gate timer and the watcher
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
