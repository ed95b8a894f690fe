// Package main provides feedpoll, a terminal consumer of the site's YouTube feed endpoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"my-site/infrastructure/clients/feedpoller"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type pollOptions struct {
	endpoint   string
	maxItems   int
	retries    int
	retryDelay time.Duration
	timeout    time.Duration
	watch      time.Duration
	asJSON     bool
}

// getEndpoint returns the feed endpoint (overridable for testing).
func getEndpoint() string {
	if url := os.Getenv("FEEDPOLL_URL"); url != "" {
		return url
	}
	return "http://localhost:10001/api/youtube-rss"
}

func newRootCmd() *cobra.Command {
	opts := &pollOptions{}

	rootCmd := &cobra.Command{
		Use:     "feedpoll",
		Short:   "Fetch the latest channel videos from the site API",
		Long:    "feedpoll queries /api/youtube-rss with the same retry policy the website uses and prints the videos.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPoll(ctx, cmd.OutOrStdout(), opts)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("feedpoll version {{.Version}}\n")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.endpoint, "url", getEndpoint(), "feed endpoint URL")
	flags.IntVarP(&opts.maxItems, "max", "n", feedpoller.DefaultMaxItems, "number of videos to request")
	flags.IntVar(&opts.retries, "retries", feedpoller.DefaultRetryCount, "retries after a network failure")
	flags.DurationVar(&opts.retryDelay, "retry-delay", feedpoller.DefaultRetryDelay, "delay between retries")
	flags.DurationVar(&opts.timeout, "timeout", feedpoller.DefaultRequestTimeout, "timeout of a single request")
	flags.DurationVar(&opts.watch, "watch", 0, "refetch on this interval until interrupted")
	flags.BoolVar(&opts.asJSON, "json", false, "print videos as JSON")

	return rootCmd
}

func runPoll(ctx context.Context, out io.Writer, opts *pollOptions) error {
	if opts.maxItems < 1 {
		return fmt.Errorf("--max must be at least 1, got %d", opts.maxItems)
	}

	pollerOpts := []feedpoller.Option{
		feedpoller.WithMaxItems(opts.maxItems),
		feedpoller.WithRetryCount(opts.retries),
		feedpoller.WithRetryDelay(opts.retryDelay),
		feedpoller.WithRequestTimeout(opts.timeout),
	}

	if opts.watch <= 0 {
		p := feedpoller.NewPoller(opts.endpoint, pollerOpts...)
		if err := p.Fetch(ctx); err != nil {
			return fmt.Errorf("fetch videos: %w", err)
		}
		return render(out, p.Snapshot(), opts.asJSON)
	}

	updates := make(chan feedpoller.State, 1)
	pollerOpts = append(pollerOpts,
		feedpoller.WithRefetchInterval(opts.watch),
		feedpoller.WithOnUpdate(func(s feedpoller.State) {
			if s.Phase != feedpoller.PhaseSuccess && s.Phase != feedpoller.PhaseFailed {
				return
			}
			select {
			case updates <- s:
			default:
			}
		}),
	)
	p := feedpoller.NewPoller(opts.endpoint, pollerOpts...)
	p.Start(ctx)
	defer p.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-updates:
			if err := render(out, s, opts.asJSON); err != nil {
				return err
			}
		}
	}
}

func render(out io.Writer, s feedpoller.State, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Data)
	}

	if s.Error != "" {
		fmt.Fprintf(out, "error: %s (showing last known videos)\n", s.Error)
	}
	source := "live"
	if s.FromCache {
		source = fmt.Sprintf("cache, %ds old", s.CacheAge)
	}
	fmt.Fprintf(out, "%d videos (%s)\n", len(s.Data), source)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PUBLISHED\tID\tSHORT\tTITLE")
	for _, v := range s.Data {
		short := ""
		if v.IsShort {
			short = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.PublishedAt, v.ID, short, v.Title)
	}
	return tw.Flush()
}
