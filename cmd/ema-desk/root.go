package main

import (
	"context"
	"fmt"
	"io"

	"github.com/koscakluka/ema-desk/internal/config"
	"github.com/koscakluka/ema-desk/internal/logging"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	envFiles   []string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "ema-desk",
		Short:        "Streaming desktop assistant",
		Long:         "Answers prompts with a streaming completions API, splitting replies into spoken sentences and clipboard text.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to the YAML config file")
	cmd.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "env files to load (default .env)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output")

	cmd.AddCommand(
		newChatCmd(flags),
		newAskCmd(flags),
		newReplayCmd(flags),
		newSchemaCmd(),
	)
	return cmd
}

func (f *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath, f.envFiles...)
	if err != nil {
		return nil, err
	}
	if f.verbose {
		cfg.Logging.Verbose = true
	}
	return cfg, nil
}

// setupLogging sends the default slog logger and the core packages'
// otelslog loggers to w. Call the returned function before exiting.
func setupLogging(cfg *config.Config, w io.Writer) func() {
	shutdown := logging.Setup(w, cfg.Logging.SlogLevel())
	return func() {
		if err := shutdown(context.Background()); err != nil {
			fmt.Fprintf(w, "failed to shut down logging: %v\n", err)
		}
	}
}
