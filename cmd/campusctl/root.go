package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShinyNito/campushire/campus"
	"github.com/ShinyNito/campushire/core"
)

type rootOptions struct {
	baseURL string
	token   string
	policy  string
	debug   bool

	client  *campus.Client
	metrics *core.CounterMetrics
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "campusctl",
		Short:         "Query the campus recruitment platform",
		Long:          `campusctl calls the campus recruitment REST API through the SDK, with response caching enabled.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.client != nil {
				opts.client.Close()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", "", "API base url (default $CAMPUS_BASE_URL)")
	flags.StringVar(&opts.token, "token", "", "bearer token (default $CAMPUS_TOKEN)")
	flags.StringVar(&opts.policy, "policy", "", "cache policy YAML file (default $CAMPUS_CACHE_POLICY)")
	flags.BoolVar(&opts.debug, "debug", false, "log requests and cache activity")

	cmd.AddCommand(
		newJobsCmd(opts),
		newJobCmd(opts),
		newNotificationsCmd(opts),
		newDashboardCmd(opts),
		newCacheStatsCmd(opts),
	)
	return cmd
}

// init 合并环境变量与命令行参数，命令行优先
func (o *rootOptions) init(stderr io.Writer) error {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	envCfg, err := campus.ParseEnvWith(map[string]string{
		"CAMPUS_BASE_URL":     o.baseURL,
		"CAMPUS_CACHE_POLICY": o.policy,
	})
	if err != nil {
		return err
	}
	cfg, err := envCfg.Config()
	if err != nil {
		return err
	}
	cfg.Logger = logger
	o.metrics = &core.CounterMetrics{}
	cfg.Metrics = o.metrics

	token := o.token
	if token == "" {
		token = os.Getenv("CAMPUS_TOKEN")
	}
	if token != "" {
		cfg.TokenProvider = core.StaticToken(token)
	}

	client, err := campus.New(cfg)
	if err != nil {
		return err
	}
	o.client = client
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
