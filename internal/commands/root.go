package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/extracto/internal/batch"
	"github.com/cleared-dev/extracto/internal/buildinfo"
	"github.com/cleared-dev/extracto/internal/config"
	"github.com/cleared-dev/extracto/internal/logger"
	"github.com/cleared-dev/extracto/internal/rates"
)

// ErrAllSkipped is returned when every artifact of a run was skipped.
var ErrAllSkipped = errors.New("every artifact was skipped")

type globalOptions struct {
	dir        string
	configPath string
	logLevel   string
	logFormat  string
	noPrompt   bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "extracto",
		Short:   "Bank statement extraction and reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(filepath.Join(opts.dir, ".env"))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dir, "dir", ".", "working directory holding statements and outputs")
	flags.StringVar(&opts.configPath, "config", "", "config file (default <dir>/"+config.FileName+")")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "console", "log format (console, json)")
	flags.BoolVar(&opts.noPrompt, "no-prompt", false, "never ask for a manual exchange rate")

	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newStatementsCommand(opts))
	rootCmd.AddCommand(newFilterCommand(opts))
	rootCmd.AddCommand(newRunCommand(opts))

	return rootCmd
}

func loadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (o *globalOptions) configFile() string {
	if o.configPath != "" {
		return o.configPath
	}
	return filepath.Join(o.dir, config.FileName)
}

func (o *globalOptions) logger(w io.Writer) (zerolog.Logger, error) {
	switch o.logFormat {
	case "", "console":
		return logger.New(w, o.logLevel)
	case "json":
		return logger.NewWithWriter(w, o.logLevel)
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", o.logFormat)
	}
}

// runner loads the configuration and wires a batch runner for cmd. The
// logger is also stored on the command's context.
func (o *globalOptions) runner(cmd *cobra.Command) (*batch.Runner, error) {
	log, err := o.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	cfg, err := config.Load(o.configFile())
	if err != nil {
		return nil, err
	}
	resolver := newResolver(cfg.Rates, cmd.InOrStdin(), cmd.OutOrStdout(), !o.noPrompt, log)
	return batch.NewRunner(batch.FileStore{Dir: o.dir}, cfg, resolver, log), nil
}

func newResolver(rc config.RatesConfig, in io.Reader, out io.Writer, prompt bool, log zerolog.Logger) *rates.Resolver {
	client := &http.Client{}
	key := os.Getenv(rc.APIKeyEnv)

	var fetcher rates.Fetcher
	switch rc.Provider {
	case config.ProviderLatest:
		if key == "" {
			log.Warn().Str("env", rc.APIKeyEnv).Msg("rate API key not set, skipping rate lookups")
			break
		}
		fetcher = &rates.LatestFetcher{Client: client, Endpoint: rc.Endpoint, APIKey: key, Base: rc.Base, Target: rc.Target}
	default:
		fetcher = &rates.DatedFetcher{Client: client, Endpoint: rc.Endpoint, APIKey: key, Base: rc.Base, Target: rc.Target}
	}

	var prompter rates.Prompter
	if rc.Manual && prompt {
		prompter = rates.NewLinePrompter(in, out)
	}
	return rates.NewResolver(fetcher, prompter, nil, rc.Timeout, log)
}
