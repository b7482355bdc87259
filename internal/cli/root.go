package cli

import (
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gookit/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aurdist/internal/app"
	"aurdist/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "AURDIST"

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	configFile := ""
	cmd := &cobra.Command{
		Use:     "aurdist",
		Short:   "Build and publish packages for a source-based repository mirror",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(configFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			// Attach the configured logger to the command context so
			// log.Ctx(ctx) calls down the stack resolve to it.
			cmd.SetContext(log.Logger.WithContext(cmd.Context()))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path")
	cmd.PersistentFlags().String("log-level", "info", "Log level")
	cmd.PersistentFlags().String("output", "packages", "Artifact output directory")
	cmd.PersistentFlags().String("db-name", "aurdist.db.tar.zst", "Repository database filename")
	cmd.PersistentFlags().String("arch", "x86_64", "Artifact architecture")
	cmd.PersistentFlags().String("registry-url", "", "Remote registry lookup endpoint")
	cmd.PersistentFlags().String("source-url", "", "Source repository base URL")
	cmd.PersistentFlags().String("targets-file", "targets.txt", "Target list file")
	cmd.PersistentFlags().String("remote-marker", ".where", "Remote destination marker file")
	cmd.PersistentFlags().String("ledger-file", ".aurdist-ledger", "Installation ledger state file")
	cmd.PersistentFlags().Bool("check-remote", false, "Check published artifacts on the mirror instead of the local directory")
	cmd.PersistentFlags().Bool("stream-output", false, "Stream external command output to the terminal")
	cmd.PersistentFlags().Bool("keep-installed", false, "Skip the automatic rollback of transiently installed packages")

	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("output_dir", cmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("db_name", cmd.PersistentFlags().Lookup("db-name"))
	_ = viper.BindPFlag("arch", cmd.PersistentFlags().Lookup("arch"))
	_ = viper.BindPFlag("registry_url", cmd.PersistentFlags().Lookup("registry-url"))
	_ = viper.BindPFlag("source_url", cmd.PersistentFlags().Lookup("source-url"))
	_ = viper.BindPFlag("targets_file", cmd.PersistentFlags().Lookup("targets-file"))
	_ = viper.BindPFlag("remote_marker", cmd.PersistentFlags().Lookup("remote-marker"))
	_ = viper.BindPFlag("ledger_file", cmd.PersistentFlags().Lookup("ledger-file"))
	_ = viper.BindPFlag("check_remote", cmd.PersistentFlags().Lookup("check-remote"))
	_ = viper.BindPFlag("stream_output", cmd.PersistentFlags().Lookup("stream-output"))
	_ = viper.BindPFlag("keep_installed", cmd.PersistentFlags().Lookup("keep-installed"))

	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newIndexCommand())
	cmd.AddCommand(newSyncCommand())
	cmd.AddCommand(newRollbackCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("aurdist")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/aurdist")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// configFromViper assembles the run configuration after flags, environment
// and the config file have all been merged.
func configFromViper() app.Config {
	cfg := app.DefaultConfig()
	if v := viper.GetString("output_dir"); v != "" {
		cfg.OutputDir = v
	}
	if v := viper.GetString("db_name"); v != "" {
		cfg.DBName = v
	}
	if v := viper.GetString("arch"); v != "" {
		cfg.Arch = v
	}
	cfg.RegistryURL = viper.GetString("registry_url")
	cfg.SourceBaseURL = viper.GetString("source_url")
	if v := viper.GetString("targets_file"); v != "" {
		cfg.TargetsFile = v
	}
	if v := viper.GetString("remote_marker"); v != "" {
		cfg.RemoteMarker = v
	}
	if v := viper.GetString("ledger_file"); v != "" {
		cfg.LedgerFile = v
	}
	cfg.CheckRemote = viper.GetBool("check_remote")
	cfg.StreamOutput = viper.GetBool("stream_output")
	cfg.Sync = types.SyncOptions{
		User:                viper.GetString("sync.user"),
		Port:                viper.GetInt("sync.port"),
		StrictHostKeyCheck:  viper.GetString("sync.strict_host_key_checking"),
		ConnectTimeoutSec:   viper.GetInt("sync.connect_timeout"),
		ServerAliveInterval: viper.GetInt("sync.server_alive_interval"),
	}
	return cfg
}

func newService() (*app.Service, error) {
	return app.NewService(configFromViper())
}

// finishRun performs the end-of-run duties shared by the build-style
// commands: automatic ledger rollback (unless disabled) and the
// consolidated failure report. Any recorded failure makes the process exit
// non-zero even when other packages succeeded.
func finishRun(cmd *cobra.Command, service *app.Service) error {
	if !viper.GetBool("keep_installed") {
		service.Rollback(cmd.Context())
	}
	if service.Failures.Empty() {
		return nil
	}
	printFailureReport(service)
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%d package build(s) failed", len(service.Failures.Records())))
}

func printFailureReport(service *app.Service) {
	records := service.Failures.Records()
	color.Error.Printf("\n%d build failure(s):\n", len(records))
	for _, record := range records {
		color.Red.Printf("  %s  %s\n", record.Timestamp.Format("2006-01-02 15:04:05"), record.Package)
		fmt.Printf("      command: %s\n", record.Command)
		fmt.Printf("      %s\n", record.Detail)
	}
}

func exitCodeForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeFailedPrecondition:
		return 3
	case errbuilder.CodeNotFound:
		return 5
	default:
		return 1
	}
}
