package main

import (
	"fmt"
	"strings"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pageview/pageview/internal/config"
)

const envPrefix = "pageview"

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pageview",
		Short:         "Prioritized page loading for image books",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: cobrautil.CommandStack(
			cobrautil.SyncViperPreRunE(envPrefix),
			bindViper,
			setupLogging,
		),
	}

	registerFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCommand(), NewServeCommand())
	return cmd
}

func registerFlags(flags *pflag.FlagSet) {
	def := config.NewConfigurationWithOptionsAndDefaults()

	flags.String("config", "", "optional configuration file (yaml, json or toml)")
	flags.String("log-level", def.LogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", def.LogFormat, "log format: console or json")
	flags.Int("workers", def.Engine.WorkerCount, "worker count used when none is stored")
	flags.Int("max-workers", def.Engine.MaxWorkers, "worker slots, 0 for max(4, NumCPU)")
	flags.Bool("lock-os-thread", def.Engine.LockOSThread, "pin every worker to an OS thread")
	flags.Duration("wait-timeout", def.Engine.WaitTimeout, "how long run waits for the requested pages")
	flags.String("data-folder", def.Store.DataFolder, "folder of the DuckDB file, empty for in-memory")
	flags.String("server-mode", def.Server.ServerMode, "dev or prod")
	flags.Int("http-port", def.Server.HTTPPort, "diagnostics server port")
	flags.Bool("auth-enabled", def.Auth.Enabled, "require a JWT on mutating routes")
	flags.String("auth-secret-file", def.Auth.SecretFile, "file holding the HS256 secret")
}

// bindViper layers an optional config file under the flags and the
// PAGEVIEW_* environment.
func bindViper(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if file := viper.GetString("config"); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func loadConfiguration() *config.Configuration {
	return config.NewConfigurationWithOptionsAndDefaults(
		config.WithLogLevel(viper.GetString("log-level")),
		config.WithLogFormat(viper.GetString("log-format")),
		config.WithEngine(*config.NewEngineWithOptionsAndDefaults(
			config.WithWorkerCount(viper.GetInt("workers")),
			config.WithMaxWorkers(viper.GetInt("max-workers")),
			config.WithLockOSThread(viper.GetBool("lock-os-thread")),
			config.WithWaitTimeout(viper.GetDuration("wait-timeout")),
		)),
		config.WithStore(*config.NewStoreWithOptionsAndDefaults(
			config.WithDataFolder(viper.GetString("data-folder")),
		)),
		config.WithServer(*config.NewServerWithOptionsAndDefaults(
			config.WithServerMode(viper.GetString("server-mode")),
			config.WithHTTPPort(viper.GetInt("http-port")),
		)),
		config.WithAuth(*config.NewAuthenticationWithOptionsAndDefaults(
			config.WithEnabled(viper.GetBool("auth-enabled")),
			config.WithSecretFile(viper.GetString("auth-secret-file")),
		)),
	)
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := zapcore.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	var zc zap.Config
	switch viper.GetString("log-format") {
	case "json":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}
