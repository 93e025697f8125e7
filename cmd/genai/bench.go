package main

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"genai/internal/engine"
	"genai/internal/loader"
)

func newBenchCmd(opts *options) *cobra.Command {
	var (
		requests    int
		concurrency int
		quiet       bool
	)
	cmd := &cobra.Command{
		Use:     "bench <prompt>",
		Short:   "Run concurrent sessions against one engine and report throughput",
		Example: "  genai bench -n 64 -c 4 \"Tell me a story.\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if requests <= 0 || concurrency <= 0 {
				return fmt.Errorf("-n and -c must be positive")
			}
			prompt := strings.Join(args, " ")
			e, err := loader.Load(opts.cfg.Model)
			if err != nil {
				return err
			}
			defer e.Close()

			bar := progressbar.NewOptions(requests,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("bench"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetVisibility(!quiet),
			)
			var tokens atomic.Int64
			jobs := make(chan struct{})
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				defer close(jobs)
				for i := 0; i < requests; i++ {
					select {
					case jobs <- struct{}{}:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
				return nil
			})
			start := time.Now()
			for w := 0; w < concurrency; w++ {
				g.Go(func() error {
					s, err := e.NewSession(engine.SessionConfig{})
					if err != nil {
						return err
					}
					defer s.Close()
					for range jobs {
						resp, err := s.PredictSync(ctx, prompt)
						if err != nil {
							return err
						}
						tokens.Add(int64(resp.Usage.CompletionTokens))
						resp.Close()
						_ = bar.Add(1)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			_ = bar.Finish()
			elapsed := time.Since(start)
			fmt.Fprintf(cmd.OutOrStdout(), "\nrequests=%d concurrency=%d tokens=%d elapsed=%s tokens/s=%.1f\n",
				requests, concurrency, tokens.Load(), elapsed.Round(time.Millisecond),
				float64(tokens.Load())/elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().IntVarP(&requests, "requests", "n", 16, "Total generations")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 2, "Concurrent sessions")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	return cmd
}
