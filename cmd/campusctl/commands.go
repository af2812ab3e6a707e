package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ShinyNito/campushire/campus"
	"github.com/ShinyNito/campushire/core"
)

func newJobsCmd(opts *rootOptions) *cobra.Command {
	var query campus.JobQuery
	var repeat int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var page *campus.Page[campus.Job]
			// 重复请求用于观察缓存命中
			for range max(repeat, 1) {
				var err error
				page, err = opts.client.ListJobs(cmd.Context(), query)
				if err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().StringVar(&query.Keyword, "keyword", "", "keyword filter")
	cmd.Flags().StringVar(&query.Location, "location", "", "location filter")
	cmd.Flags().IntVar(&query.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&query.Size, "size", 10, "page size")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "repeat the request to exercise the cache")
	return cmd
}

func newJobCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "job <id>",
		Short: "Show a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}
			job, err := opts.client.GetJob(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}
}

func newNotificationsCmd(opts *rootOptions) *cobra.Command {
	var query campus.NotificationQuery

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := opts.client.ListNotifications(cmd.Context(), query)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().BoolVar(&query.UnreadOnly, "unread", false, "only unread notifications")
	cmd.Flags().IntVar(&query.Page, "page", 1, "page number")
	return cmd
}

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show profile, unread count and latest jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}
}

type cacheReport struct {
	Stats   core.CacheStats      `json:"stats"`
	Metrics core.MetricsSnapshot `json:"metrics"`
}

func newCacheStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cache-stats",
		Short: "Print cache statistics after warm-up requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for range 2 {
				if _, err := opts.client.ListJobs(cmd.Context(), campus.JobQuery{}); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), cacheReport{
				Stats:   opts.client.CacheStats(),
				Metrics: opts.metrics.Snapshot(),
			})
		},
	}
}
