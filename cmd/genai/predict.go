package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"genai/internal/engine"
	"genai/internal/loader"
)

func newPredictCmd(opts *options) *cobra.Command {
	var (
		stream    bool
		maxOutput int
	)
	cmd := &cobra.Command{
		Use:     "predict <prompt>",
		Short:   "Generate a completion for a prompt",
		Example: "  genai predict --stream \"Write a haiku about the ocean.\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			e, err := loader.Load(opts.cfg.Model)
			if err != nil {
				return err
			}
			defer e.Close()
			s, err := e.NewSession(engine.SessionConfig{MaxOutputTokens: maxOutput})
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if !stream {
				resp, err := s.PredictSync(cmd.Context(), prompt)
				if err != nil {
					return err
				}
				defer resp.Close()
				fmt.Fprintln(out, resp.Text())
				opts.log.Debug().Str("finish_reason", string(resp.FinishReason)).
					Int("tokens", resp.Usage.CompletionTokens).Msg("done")
				return nil
			}

			var genErr error
			err = s.PredictAsync(cmd.Context(), prompt, func(r *engine.Response) {
				fmt.Fprint(out, r.Text())
				if r.Done {
					fmt.Fprintln(out)
					genErr = r.Err
				}
				r.Close()
			})
			if err != nil {
				return err
			}
			s.Wait()
			return genErr
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "Print chunks as they are flushed")
	cmd.Flags().IntVar(&maxOutput, "max-output-tokens", 0, "Cap generated tokens (0 uses the model budget)")
	return cmd
}
