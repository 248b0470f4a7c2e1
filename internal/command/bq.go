// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/meta"
	"github.com/staranto/marquee/internal/source"
)

// ChartRow is a box office row tagged with the chart it came from, so the
// four charts can be shown as one table.
type ChartRow struct {
	Chart source.Bucket `json:"chart"`
	source.Item
}

var bqDefaultAttrs = map[source.Bucket][]string{
	source.Worldwide: {"rank", "title", "gross"},
	source.Domestic:  {"rank", "title", "gross"},
	source.Weekend:   {"rank", "title", "gross"},
	source.Daily:     {"rank", "title", "dailyGross", "gross", "daysInRelease"},
}

// BqCommandAction is the action handler for the "bq" subcommand. The single
// optional argument names a chart; without it, or with "all", the four
// charts are fetched together.
func BqCommandAction(ctx context.Context, cmd *cli.Command) error {
	arg := strings.ToLower(cmd.Args().First())
	if arg == "" || arg == "all" {
		return bqAll(ctx, cmd)
	}

	bucket, err := source.ParseBucket(arg)
	if err != nil {
		return err
	}

	runner := &QueryActionRunner[[]source.Item]{
		CommandName:  "bq",
		SchemaType:   reflect.TypeOf(source.Item{}),
		DefaultAttrs: bqDefaultAttrs[bucket],
		FetchFn: func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[[]source.Item], error) {
			r, err := svc.BoxOffice.Get(ctx, bucket)
			if err != nil {
				return r, err
			}
			if bucket == source.Daily {
				r.Value = dailyRows(cmd, r.Value)
			}
			return r, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// dailyRows narrows the daily chart by --date. "all" keeps every date.
func dailyRows(cmd *cli.Command, items []source.Item) []source.Item {
	date := cmd.String("date")
	if date == "all" {
		return items
	}
	if dates := source.DailyDates(items); len(dates) > 0 {
		log.Debugf("daily dates: %v", dates)
	}
	return source.DailyFor(items, date)
}

func bqAll(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "bq") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(ChartRow{})) {
		return nil
	}

	al := BuildAttrs(cmd, "chart", "rank", "title", "gross")

	svc, err := NewServices(ctx, cmd)
	if err != nil {
		return err
	}

	summary, err := svc.BoxOffice.All(ctx)
	if err != nil {
		return err
	}
	if len(summary.Stale) > 0 {
		names := make([]string, 0, len(summary.Stale))
		for _, b := range summary.Stale {
			names = append(names, string(b))
		}
		fmt.Fprintf(stderr(cmd), "warning: %s served from expired cache entries\n", strings.Join(names, ", "))
	}
	log.Debugf("box office updated %s", summary.LastUpdated.Format(time.RFC3339))

	var rows []ChartRow
	for _, b := range source.Buckets {
		items := summary.Chart(b)
		if b == source.Daily {
			items = dailyRows(cmd, items)
		}
		for _, it := range items {
			rows = append(rows, ChartRow{Chart: b, Item: it})
		}
	}

	return EmitJSON(rows, al, cmd, "")
}

// BqCommandBuilder constructs the cli.Command definition for the "bq"
// command.
func BqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "bq",
		Usage:     "box office query",
		UsageText: `marquee bq [worldwide|domestic|daily|weekend|all] [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "daily chart date (YYYY-MM-DD, default latest, all for every date)",
			},
		},
		Action: BqCommandAction,
		Meta:   meta,
	}).Build()
}
