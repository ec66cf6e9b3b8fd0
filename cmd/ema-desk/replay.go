package main

import (
	"encoding/json"
	"fmt"
	"iter"
	"os"

	"github.com/koscakluka/ema-desk/core/segmenter"
	"github.com/spf13/cobra"
)

func newReplayCmd(flags *rootFlags) *cobra.Command {
	var (
		chunkSize int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Segment a saved reply as if it was streamed",
		Long:  "Feeds FILE to the segmenter in fixed size chunks and prints every event. Useful for checking marker and code fence handling without a completions API.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if chunkSize < 1 {
				return fmt.Errorf("chunk size must be at least 1, got %d", chunkSize)
			}

			cfg, err := flags.load()
			if err != nil {
				return err
			}
			defer setupLogging(cfg, cmd.ErrOrStderr())()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			encoder := json.NewEncoder(out)
			for event := range segmenter.Segment(runeChunks(string(data), chunkSize), cfg.Segmenter.Options()...) {
				if asJSON {
					if err := encoder.Encode(event); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(out, event)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&chunkSize, "chunk-size", "n", 1, "characters per streamed chunk")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print events as JSON lines")
	return cmd
}

// runeChunks splits text into chunks of size characters.
func runeChunks(text string, size int) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		for start := 0; start < len(runes); start += size {
			end := min(start+size, len(runes))
			if !yield(string(runes[start:end])) {
				return
			}
		}
	}
}
