// Package cmd implements the bytechef command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vihar-s1/bytechef/internal/api"
	"github.com/vihar-s1/bytechef/internal/config"
	"github.com/vihar-s1/bytechef/internal/infrastructure/sqlite"
	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/paths"
	"github.com/vihar-s1/bytechef/internal/tracing"
	"github.com/vihar-s1/bytechef/internal/workflow/application"
	"github.com/vihar-s1/bytechef/internal/workflow/testexec"
)

var (
	cfgFile string
	cfg     config.Config
	v       = viper.New()

	closeLog        func()
	shutdownTracing func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "bytechef",
	Short: "Edit and test-run workflow definitions",
	Long: `bytechef stores workflow definitions (JSON or YAML) and lets you edit them
in a terminal editor, save them, and run them once against a test configuration.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		teardown(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultDir()+"/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db", "", "path of the local workflow database")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := loadConfig(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	closeLog, err = log.Init(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	log.Debug(log.CatConfig, "Configuration loaded", "file", v.ConfigFileUsed(), "database", cfg.Database.Path)

	shutdownTracing, err = tracing.Setup(cmd.Context(), cfg.Tracing, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	return nil
}

func teardown(ctx context.Context) {
	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			log.ErrorErr(log.CatApp, "Tracing shutdown failed", err)
		}
		shutdownTracing = nil
	}
	if closeLog != nil {
		closeLog()
		closeLog = nil
	}
}

// loadConfig reads defaults, the config file and BYTECHEF_* environment
// variables, in increasing precedence. A missing default config file is
// not an error; a missing explicit one is.
func loadConfig(v *viper.Viper, path string) (config.Config, error) {
	setDefaults(v, config.Defaults())

	v.SetEnvPrefix("BYTECHEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(config.DefaultDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	c.Database.Path = paths.ResolveDatabasePath(c.Database.Path)
	c.Log.File = paths.ExpandHome(c.Log.File)
	return c, nil
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.url", d.Server.URL)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("executor.task_delay", d.Executor.TaskDelay)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("ui.output_style", d.UI.OutputStyle)
}

// openLocal opens the local store and the service on top of it.
func openLocal() (*application.Service, func(), error) {
	db, err := sqlite.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	svc := application.NewService(application.Config{
		Workflows:          db.WorkflowRepository(),
		TestConfigurations: db.TestConfigurationRepository(),
		Executor:           testexec.NewDryRunExecutor(testexec.WithTaskDelay(cfg.Executor.TaskDelay)),
		CacheTTL:           cfg.Cache.TTL,
	})
	return svc, func() {
		if err := db.Close(); err != nil {
			log.ErrorErr(log.CatDB, "Failed to close database", err)
		}
	}, nil
}

// openBackend returns the remote API when serverURL is set, the local
// store otherwise.
func openBackend(serverURL string) (api.WorkflowService, func(), error) {
	if serverURL != "" {
		log.Info(log.CatAPI, "Using remote server", "url", serverURL)
		return api.NewClient(serverURL), func() {}, nil
	}
	svc, closeFn, err := openLocal()
	if err != nil {
		return nil, nil, err
	}
	return svc, closeFn, nil
}
