package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/koscakluka/ema-desk/core/assistant"
	"github.com/koscakluka/ema-desk/core/segmenter"
	"github.com/spf13/cobra"
)

func newAskCmd(flags *rootFlags) *cobra.Command {
	var attachClipboard bool

	cmd := &cobra.Command{
		Use:   "ask PROMPT...",
		Short: "Answer a single prompt and print the reply as it streams",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			defer setupLogging(cfg, cmd.ErrOrStderr())()

			out := cmd.OutOrStdout()
			a, err := newAssistant(cfg,
				assistant.WithSpeaker(printSpeaker(out)),
				assistant.WithEventHandler(func(event segmenter.Event) {
					if event.Kind == segmenter.KindClipboardText {
						fmt.Fprintf(out, "[copied to clipboard: %d characters]\n", len(event.Text))
					}
				}),
			)
			if err != nil {
				return err
			}
			if attachClipboard {
				a.AttachClipboard()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			go func() {
				<-ctx.Done()
				a.Cancel()
			}()

			if _, err := a.Respond(ctx, strings.Join(args, " ")); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "reply cancelled")
					return nil
				}
				return fmt.Errorf("ask failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&attachClipboard, "clipboard", "b", false, "attach the current clipboard to the prompt")
	return cmd
}

func printSpeaker(w io.Writer) assistant.SpeakerFunc {
	return func(_ context.Context, sentence string) error {
		_, err := fmt.Fprintln(w, sentence)
		return err
	}
}
