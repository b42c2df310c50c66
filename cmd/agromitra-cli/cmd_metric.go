package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agromitra/agromitra/internal/models"
)

func newMetricCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metric",
		Short: "Manage metric series",
	}
	cmd.AddCommand(metricAppendCmd())
	cmd.AddCommand(metricRangeCmd())
	cmd.AddCommand(metricLatestCmd())
	cmd.AddCommand(metricStatsCmd())
	cmd.AddCommand(metricAggregateCmd())
	cmd.AddCommand(metricDeleteCmd())
	cmd.AddCommand(metricPruneCmd())
	return cmd
}

// parseWindow turns --start/--end flags into epoch millisecond bounds.
// Empty start means the epoch; empty end means now.
func parseWindow(start, end string) (int64, int64) {
	startTS := int64(0)
	endTS := time.Now().UnixMilli()

	if start != "" {
		v, err := strconv.ParseInt(start, 10, 64)
		if err != nil {
			fatal("parse --start", err)
		}
		startTS = v
	}
	if end != "" {
		v, err := strconv.ParseInt(end, 10, 64)
		if err != nil {
			fatal("parse --end", err)
		}
		endTS = v
	}
	return startTS, endTS
}

func metricAppendCmd() *cobra.Command {
	var ts int64
	var location, source, unit, metaJSON string

	cmd := &cobra.Command{
		Use:   "append <metric-id> <value>",
		Short: "Append a point (overwrites an existing point at the same timestamp)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				fatal("parse value", err)
			}
			if ts == 0 {
				ts = time.Now().UnixMilli()
			}

			p := models.MetricPoint{
				MetricID:  args[0],
				Timestamp: ts,
				Value:     value,
				Location:  location,
				Source:    source,
				Unit:      unit,
			}
			if metaJSON != "" {
				if err := json.Unmarshal([]byte(metaJSON), &p.Metadata); err != nil {
					fatal("parse metadata", err)
				}
			}

			if err := metricStore.Append(context.Background(), p); err != nil {
				fatal("append point", err)
			}
			output(p, args[0])
		},
	}
	cmd.Flags().Int64Var(&ts, "ts", 0, "Timestamp in epoch milliseconds (default now)")
	cmd.Flags().StringVar(&location, "location", "", "Location tag")
	cmd.Flags().StringVar(&source, "source", "", "Provenance tag")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit of measure")
	cmd.Flags().StringVar(&metaJSON, "metadata", "", "Metadata as JSON")
	return cmd
}

func metricRangeCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "range <metric-id>",
		Short: "Read points in a window, ascending by timestamp",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			startTS, endTS := parseWindow(start, end)

			points, err := metricStore.Range(context.Background(), args[0], startTS, endTS)
			if err != nil {
				fatal("range", err)
			}

			if flagFmt == "table" {
				headers := []string{"TIMESTAMP", "VALUE", "UNIT"}
				var rows [][]string
				for _, p := range points {
					rows = append(rows, []string{
						time.UnixMilli(p.Timestamp).UTC().Format(time.RFC3339),
						fmt.Sprintf("%g", p.Value),
						p.Unit,
					})
				}
				formatTable(headers, rows)
				return
			}
			output(points, "")
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Window start in epoch milliseconds")
	cmd.Flags().StringVar(&end, "end", "", "Window end in epoch milliseconds (default now)")
	return cmd
}

func metricLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest <metric-id>",
		Short: "Read the newest point of a series",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			p, err := metricStore.Latest(context.Background(), args[0])
			if err != nil {
				fatal("latest", err)
			}
			output(p, fmt.Sprintf("%g", p.Value))
		},
	}
}

func metricStatsCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "stats <metric-id>",
		Short: "Summary statistics and trend for a window",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			startTS, endTS := parseWindow(start, end)

			stats, err := metricStore.Statistics(context.Background(), args[0], startTS, endTS)
			if err != nil {
				fatal("stats", err)
			}
			output(stats, stats.Trend)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Window start in epoch milliseconds")
	cmd.Flags().StringVar(&end, "end", "", "Window end in epoch milliseconds (default now)")
	return cmd
}

func metricAggregateCmd() *cobra.Command {
	var start, end string
	var bucketMs int64

	cmd := &cobra.Command{
		Use:   "aggregate <metric-id>",
		Short: "Bucketized min/max/avg/count over a window",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			startTS, endTS := parseWindow(start, end)

			buckets, err := metricStore.Aggregate(context.Background(), args[0], startTS, endTS, bucketMs)
			if err != nil {
				fatal("aggregate", err)
			}
			output(buckets, "")
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Window start in epoch milliseconds")
	cmd.Flags().StringVar(&end, "end", "", "Window end in epoch milliseconds (default now)")
	cmd.Flags().Int64Var(&bucketMs, "bucket", 86400000, "Bucket size in milliseconds (default one day)")
	return cmd
}

func metricDeleteCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "delete <metric-id>",
		Short: "Delete points in a window",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			startTS, endTS := parseWindow(start, end)

			deleted, err := metricStore.DeleteRange(context.Background(), args[0], startTS, endTS)
			if err != nil {
				fatal("delete range", err)
			}
			output(map[string]int{"deleted": deleted}, strconv.Itoa(deleted))
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Window start in epoch milliseconds")
	cmd.Flags().StringVar(&end, "end", "", "Window end in epoch milliseconds (default now)")
	return cmd
}

func metricPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete all points past their retention expiry",
		Run: func(cmd *cobra.Command, args []string) {
			pruned, err := metricStore.PruneExpired(context.Background())
			if err != nil {
				fatal("prune", err)
			}
			output(map[string]int{"pruned": pruned}, strconv.Itoa(pruned))
		},
	}
}
