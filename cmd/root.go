package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/junyeong-ai/modmap/internal/config"
	"github.com/junyeong-ai/modmap/internal/logging"
	"github.com/junyeong-ai/modmap/internal/telemetry"
	"github.com/junyeong-ai/modmap/internal/ui"
	"github.com/junyeong-ai/modmap/internal/validate"
	"github.com/junyeong-ai/modmap/schema"
)

// version is stamped at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "modmap",
	Short:         "Validate and inspect versioned module maps and plugin bundles",
	Long:          "modmap loads module maps, project manifests and plugin bundles, refusing documents whose schema major version it does not support.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .modmap.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".modmap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("MODMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// env is what every command needs: configuration, a logger, a printer on
// the command's writers, and a validator wired to telemetry.
type env struct {
	cfg       config.Config
	log       zerolog.Logger
	printer   *ui.Printer
	events    *telemetry.Emitter
	validator *validate.Validator
}

func newEnv(cmd *cobra.Command, opts ...validate.Option) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log := logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)

	events, err := telemetry.NewEmitter(cfg.EventsPath)
	if err != nil {
		return nil, err
	}

	opts = append([]validate.Option{validate.WithLogger(log), validate.WithEvents(events)}, opts...)
	return &env{
		cfg:       cfg,
		log:       log,
		printer:   ui.NewWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		events:    events,
		validator: validate.New(schema.NewRegistry(), opts...),
	}, nil
}

// emit records a lifecycle event; failures are logged, not returned.
func (e *env) emit(kind string, data any) {
	err := e.events.Emit(telemetry.Event{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Data:      data,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("kind", kind).Msg("emitting event")
	}
}

func (e *env) close() {
	if err := e.events.Close(); err != nil {
		e.log.Warn().Err(err).Msg("closing telemetry")
	}
}

// kindFlag reads --kind. Empty means detect from the document.
func kindFlag(cmd *cobra.Command) (schema.DocumentKind, error) {
	raw, _ := cmd.Flags().GetString("kind")
	if raw == "" {
		return "", nil
	}
	return schema.ParseDocumentKind(raw)
}

func addKindFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("kind", "k", "", "document kind: modulemap, manifest or plugin (default: detect)")
}
