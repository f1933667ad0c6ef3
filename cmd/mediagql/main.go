// Package main implements the mediagql command, a GraphQL gateway over the
// media.ccc.de public API.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barnslig/mediacccde-graphql/config"
	"github.com/barnslig/mediacccde-graphql/errors"
)

// Build information, overridden with -ldflags at release time.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "mediagql"

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	dotEnvPath string
	logLevel   string
	logFormat  string
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   appName,
		Short: "GraphQL gateway for the media.ccc.de API",
		Long: `mediagql serves a GraphQL API in front of the media.ccc.de REST API,
the CDN mirror list and the news feed.

Configuration is read from an optional YAML or JSON file, then from .env,
then from MEDIAGQL_* environment variables, e.g. MEDIAGQL_SERVER_BIND_ADDRESS.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", os.Getenv(config.EnvPrefix+"_CONFIG"),
		"Path to a YAML or JSON configuration file (env: "+config.EnvPrefix+"_CONFIG)")
	flags.StringVar(&opts.dotEnvPath, "env-file", ".env", "Path to a .env file, ignored when missing")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override log.level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Override log.format: json, text")

	root.AddCommand(newServeCmd(opts), newValidateCmd(opts), newVersionCmd())
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL gateway (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and print the effective settings",
		Long: `validate loads the configuration the same way serve does and prints the
effective settings with secrets masked. With --output the unmasked settings
are also written to a YAML or JSON file that serve can load with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if output != "" {
				if err := cfg.SaveToFile(output); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
			}
			return printConfig(cmd.OutOrStdout(), cfg, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Also write the effective configuration to this YAML or JSON file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build %s, %s)\n",
				appName, Version, BuildTime, runtime.Version())
		},
	}
}

// loadConfig layers defaults, the config file, .env and the environment,
// then applies the log flag overrides and validates the result.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	loader := config.NewLoader()
	loader.AddDotEnv(opts.dotEnvPath)
	loader.AddLayer(opts.configPath)
	loader.EnableValidation(false)

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// printConfig writes the effective configuration with secrets masked. The
// YAML form starts with a comment line; the JSON form is a bare document.
func printConfig(w io.Writer, cfg *config.Config, format string) error {
	switch strings.ToLower(format) {
	case "json":
		_, err := fmt.Fprintln(w, cfg.String())
		return err
	case "yaml", "":
		out, err := cfg.Masked().YAML()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "# configuration is valid")
		_, err = w.Write(out)
		return err
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "validate", "printConfig",
			fmt.Sprintf("unknown output format %q", format))
	}
}
