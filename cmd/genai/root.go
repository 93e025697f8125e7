package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"genai/internal/config"
	"genai/internal/engine"
	"genai/internal/httpapi"
	"genai/internal/loader"
	"genai/internal/manager"
)

// options carries the persistent flags shared by every subcommand.
type options struct {
	configPath string
	logLevel   string
	modelPath  string
	tokPath    string
	cfg        config.Config
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "genai",
		Short:         "Streaming text generation on a local model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultLevel := os.Getenv("GENAI_LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("GENAI_CONFIG"), "Config file (.yaml, .json or .toml); defaults GENAI_CONFIG")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", defaultLevel, "Log level: debug|info|warn|error (overrides config)")
	root.PersistentFlags().StringVar(&opts.modelPath, "model", "", "Model file or directory (overrides model.model_path)")
	root.PersistentFlags().StringVar(&opts.tokPath, "tokenizer", "", "Tokenizer file (overrides model.tokenizer_path)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return opts.setup(cmd.ErrOrStderr())
	}
	root.AddCommand(
		newServeCmd(opts),
		newPredictCmd(opts),
		newCountCmd(opts),
		newBenchCmd(opts),
	)
	return root
}

// setup loads the config file and installs the logger in every package.
func (o *options) setup(stderr io.Writer) error {
	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		o.cfg = cfg
	}
	if o.logLevel != "" {
		o.cfg.LogLevel = o.logLevel
	}
	if o.modelPath != "" {
		o.cfg.Model.ModelPath = o.modelPath
	}
	if o.tokPath != "" {
		o.cfg.Model.TokenizerPath = o.tokPath
	}
	o.cfg.ApplyDefaults()
	if err := o.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	l, err := newLogger(stderr, o.cfg.LogLevel, o.cfg.LogFormat)
	if err != nil {
		return err
	}
	o.log = l
	engine.SetLogger(l.With().Str("component", "engine").Logger())
	loader.SetLogger(l.With().Str("component", "loader").Logger())
	manager.SetLogger(l.With().Str("component", "manager").Logger())
	httpapi.SetLogger(l.With().Str("component", "http").Logger())
	return nil
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
