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

// TvqCommandAction is the action handler for the "tvq" subcommand.
func TvqCommandAction(ctx context.Context, cmd *cli.Command) error {
	switch v := verb(cmd, "popular"); v {
	case "popular":
		return runQuery(ctx, cmd, "tvq", source.TVShow{},
			[]string{"id", "name", "first_air_date", "vote_average"}, "results",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.TVPage], error) {
				return svc.TMDB.PopularTV(ctx, int(cmd.Int("page")))
			})

	case "details":
		return runQuery(ctx, cmd, "tvq", source.TVDetails{},
			[]string{"id", "name", "first_air_date", "number_of_seasons", "number_of_episodes", "status"}, "",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.TVDetails], error) {
				id, err := intArg(cmd, 1, "show id")
				if err != nil {
					return cache.Result[source.TVDetails]{}, err
				}
				return svc.TMDB.TV(ctx, id)
			})

	case "season":
		return runQuery(ctx, cmd, "tvq", source.Episode{},
			[]string{"episode_number:episode", "name", "air_date", "runtime"}, "episodes",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.Season], error) {
				id, err := intArg(cmd, 1, "show id")
				if err != nil {
					return cache.Result[source.Season]{}, err
				}
				season, err := intArg(cmd, 2, "season number")
				if err != nil {
					return cache.Result[source.Season]{}, err
				}
				return svc.TMDB.Season(ctx, id, season)
			})

	case "episode":
		return runQuery(ctx, cmd, "tvq", source.Episode{},
			[]string{"season_number:season", "episode_number:episode", "name", "air_date", "vote_average"}, "",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.Episode], error) {
				id, err := intArg(cmd, 1, "show id")
				if err != nil {
					return cache.Result[source.Episode]{}, err
				}
				season, err := intArg(cmd, 2, "season number")
				if err != nil {
					return cache.Result[source.Episode]{}, err
				}
				episode, err := intArg(cmd, 3, "episode number")
				if err != nil {
					return cache.Result[source.Episode]{}, err
				}
				return svc.TMDB.Episode(ctx, id, season, episode)
			})

	default:
		return fmt.Errorf("unknown tv query %q (want popular, details, season or episode)", v)
	}
}

// TvqCommandBuilder constructs the cli.Command definition for the "tvq"
// command.
func TvqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:  "tvq",
		Usage: "tv show query",
		UsageText: `marquee tvq [popular] [options]
marquee tvq details <show-id> [options]
marquee tvq season <show-id> <season> [options]
marquee tvq episode <show-id> <season> <episode> [options]`,
		Flags:  []cli.Flag{newPageFlag()},
		Action: TvqCommandAction,
		Meta:   meta,
	}).Build()
}
