// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/meta"
	"github.com/staranto/marquee/internal/source"
)

// NqCommandAction is the action handler for the "nq" subcommand. The
// optional argument is a news category and defaults to film.
func NqCommandAction(ctx context.Context, cmd *cli.Command) error {
	category := verb(cmd, "film")

	return runQuery(ctx, cmd, "nq", source.Article{},
		[]string{"publishedAt:published", "source.name:source", "title"}, "",
		func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[[]source.Article], error) {
			return svc.News.Articles(ctx, category, int(cmd.Int("limit")))
		})
}

// NqCommandBuilder constructs the cli.Command definition for the "nq"
// command.
func NqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "nq",
		Usage:     "entertainment news query",
		UsageText: `marquee nq [film|tv|celebrity|entertainment] [options]`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "number of articles",
				Value:   source.DefaultNewsLimit,
			},
		},
		Action: NqCommandAction,
		Meta:   meta,
	}).Build()
}
