package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stosh99/olympics_tv/internal/config"
	"github.com/stosh99/olympics_tv/internal/editor"
	"github.com/stosh99/olympics_tv/internal/fetch"
	"github.com/stosh99/olympics_tv/internal/llm"
	"github.com/stosh99/olympics_tv/internal/logger"
	"github.com/stosh99/olympics_tv/internal/pipeline"
	"github.com/stosh99/olympics_tv/internal/resolver"
	"github.com/stosh99/olympics_tv/internal/scheduler"
	"github.com/stosh99/olympics_tv/internal/scraper"
	"github.com/stosh99/olympics_tv/internal/search/factory"
	"github.com/stosh99/olympics_tv/internal/storage"
	"github.com/stosh99/olympics_tv/internal/writer"
)

var (
	configPath string
	dryRun     bool
)

// app bundles the wired components. Built once per invocation after the
// config is loaded.
type app struct {
	store *storage.Store
	post  *pipeline.Orchestrator
	pre   *pipeline.IntroOrchestrator
	cfg   *config.Config
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	searcher, err := factory.NewSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("create searcher: %w", err)
	}
	fetcher := fetch.NewFetcher(cfg.Scraper)
	scr := scraper.New(cfg.Scraper, searcher, fetcher)

	gen, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	res := resolver.New(store)
	post := pipeline.NewOrchestrator(store, res, scr,
		writer.NewCommentary(gen), editor.NewCommentary(gen))
	pre := pipeline.NewIntroOrchestrator(store, store, scr,
		writer.NewIntro(gen), editor.NewIntro(gen))

	return &app{store: store, post: post, pre: pre, cfg: cfg}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:   "commentary",
		Short: "Olympic commentary generation pipeline",
		Long:  "Generates post-event commentary and pre-event previews for 2026 Winter Olympics event units.",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "resolve and log queries without scraping or writing")

	root.AddCommand(processCmd(ctx), introCmd(ctx), batchCmd(ctx), scheduleCmd(ctx))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func processCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "process <event_unit_code>",
		Short: "Generate post-event commentary for one event unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			_, err = a.post.ProcessEvent(ctx, args[0], dryRun)
			return err
		},
	}
}

func introCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "intro <event_unit_code>",
		Short: "Generate a pre-event preview for one event unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			_, err = a.pre.ProcessEvent(ctx, args[0], dryRun)
			return err
		},
	}
}

func batchCmd(ctx context.Context) *cobra.Command {
	var medalsOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process the backlog of finished units without commentary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			sched := scheduler.New(a.store, a.post, a.pre, a.cfg.Scheduler, dryRun)
			_, err = sched.Backlog(ctx, medalsOnly, limit)
			return err
		},
	}
	cmd.Flags().BoolVar(&medalsOnly, "medals", false, "medal events only")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap the number of units processed (0 = no cap)")
	return cmd
}

func scheduleCmd(ctx context.Context) *cobra.Command {
	var postOnly, preOnly bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run one eligibility sweep over the schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			if postOnly && preOnly {
				return fmt.Errorf("--post-only and --pre-only are mutually exclusive")
			}
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			sched := scheduler.New(a.store, a.post, a.pre, a.cfg.Scheduler, dryRun)
			_, err = sched.Run(ctx, postOnly, preOnly)
			return err
		},
	}
	cmd.Flags().BoolVar(&postOnly, "post-only", false, "post-event commentary only")
	cmd.Flags().BoolVar(&preOnly, "pre-only", false, "pre-event previews only")
	return cmd
}
