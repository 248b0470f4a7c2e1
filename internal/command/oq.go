// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/meta"
	"github.com/staranto/marquee/internal/source"
)

// OqCommandAction is the action handler for the "oq" subcommand, which
// queries OMDb.
func OqCommandAction(ctx context.Context, cmd *cli.Command) error {
	switch v := verb(cmd, ""); v {
	case "search":
		return runQuery(ctx, cmd, "oq", source.OMDbMovie{},
			[]string{"imdbID:id", "Title:title", "Year:year", "Type:type"}, "movies",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.OMDbSearch], error) {
				q, err := textArg(cmd, 1, "search query")
				if err != nil {
					return cache.Result[source.OMDbSearch]{}, err
				}
				return svc.OMDb.Search(ctx, q, int(cmd.Int("page")))
			})

	case "details":
		return runQuery(ctx, cmd, "oq", source.OMDbDetails{},
			[]string{"Title:title", "Year:year", "Rated:rated", "Runtime:runtime", "imdbRating:rating", "BoxOffice:gross"}, "",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.OMDbDetails], error) {
				id, err := textArg(cmd, 1, "IMDb id")
				if err != nil {
					return cache.Result[source.OMDbDetails]{}, err
				}
				return svc.OMDb.Details(ctx, id)
			})

	default:
		return fmt.Errorf("unknown omdb query %q (want search or details)", v)
	}
}

// OqCommandBuilder constructs the cli.Command definition for the "oq"
// command.
func OqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:  "oq",
		Usage: "OMDb query",
		UsageText: `marquee oq search <query> [options]
marquee oq details <imdb-id> [options]`,
		Flags:  []cli.Flag{newPageFlag()},
		Action: OqCommandAction,
		Meta:   meta,
	}).Build()
}
