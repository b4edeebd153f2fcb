package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	port       string
	logLevel   string
	logFormat  string
}

// Execute runs the CLI.
func Execute() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	v := viper.New()
	v.SetEnvPrefix("QUIZGAME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizgame",
		Short:         "Live multiplayer quiz game service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), flags.logLevel, flags.logFormat))
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.port, "port", "", "port to listen on, overrides the config file (env: QUIZGAME_PORT)")
	pf.StringVar(&flags.configPath, "config", "config/config.yaml", "path to YAML config (env: QUIZGAME_CONFIG)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error (env: QUIZGAME_LOG_LEVEL)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "text or json (env: QUIZGAME_LOG_FORMAT)")
	bindEnv(v, pf)

	cmd.AddCommand(NewStartCmd(flags))
	cmd.AddCommand(NewMigrateCmd(flags))
	cmd.AddCommand(NewImportCmd(flags))
	cmd.AddCommand(NewResultsCmd(flags))
	return cmd
}

// bindEnv lets QUIZGAME_* variables fill flags not set on the command line.
func bindEnv(v *viper.Viper, set *pflag.FlagSet) {
	set.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = set.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
