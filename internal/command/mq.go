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

var movieListAliases = map[string]source.MovieList{
	"top": source.TopRated,
	"now": source.NowPlaying,
}

var movieRowAttrs = []string{"id", "title", "release_date", "vote_average"}

// MqCommandAction is the action handler for the "mq" subcommand. The first
// argument is the verb: a movie list, search, multi, details, similar or
// financials.
func MqCommandAction(ctx context.Context, cmd *cli.Command) error {
	switch v := verb(cmd, string(source.Popular)); v {
	case "search":
		return runQuery(ctx, cmd, "mq", source.Movie{}, movieRowAttrs, "results",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.MoviePage], error) {
				q, err := textArg(cmd, 1, "search query")
				if err != nil {
					return cache.Result[source.MoviePage]{}, err
				}
				return svc.TMDB.SearchMovies(ctx, q, int(cmd.Int("page")))
			})

	case "multi":
		return runQuery(ctx, cmd, "mq", source.SearchResult{}, []string{"type", "id", "title", "release_date"}, "",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[[]source.SearchResult], error) {
				q, err := textArg(cmd, 1, "search query")
				if err != nil {
					return cache.Result[[]source.SearchResult]{}, err
				}
				return svc.TMDB.SearchMulti(ctx, q)
			})

	case "details":
		return runQuery(ctx, cmd, "mq", source.MovieDetails{},
			[]string{"id", "title", "release_date", "runtime", "vote_average", "genres.name:genres"}, "",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.MovieDetails], error) {
				id, err := intArg(cmd, 1, "movie id")
				if err != nil {
					return cache.Result[source.MovieDetails]{}, err
				}
				return svc.TMDB.Movie(ctx, id)
			})

	case "similar":
		return runQuery(ctx, cmd, "mq", source.Movie{}, movieRowAttrs, "results",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.MoviePage], error) {
				id, err := intArg(cmd, 1, "movie id")
				if err != nil {
					return cache.Result[source.MoviePage]{}, err
				}
				return svc.TMDB.Similar(ctx, id, int(cmd.Int("page")))
			})

	case "financials":
		return runQuery(ctx, cmd, "mq", source.Financials{},
			[]string{"title", "budget::$", "revenue::$", "currency", "releaseDate"}, "",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.Financials], error) {
				id, err := intArg(cmd, 1, "movie id")
				if err != nil {
					return cache.Result[source.Financials]{}, err
				}
				return svc.TMDB.Financials(ctx, id)
			})

	default:
		list, ok := movieListAliases[v]
		if !ok {
			var err error
			if list, err = source.ParseMovieList(v); err != nil {
				return fmt.Errorf("%w (want a movie list, search, multi, details, similar or financials)", err)
			}
		}
		return runQuery(ctx, cmd, "mq", source.Movie{}, movieRowAttrs, "results",
			func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.MoviePage], error) {
				return svc.TMDB.Movies(ctx, list, int(cmd.Int("page")))
			})
	}
}

// MqCommandBuilder constructs the cli.Command definition for the "mq"
// command.
func MqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:  "mq",
		Usage: "movie query",
		UsageText: `marquee mq [popular|upcoming|top|now] [options]
marquee mq search|multi <query> [options]
marquee mq details|similar|financials <movie-id> [options]`,
		Flags:  []cli.Flag{newPageFlag()},
		Action: MqCommandAction,
		Meta:   meta,
	}).Build()
}
