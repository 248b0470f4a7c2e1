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

// AqCommandAction is the action handler for the "aq" subcommand. It lists
// the filmography of a person, or the TV credits with --tv.
func AqCommandAction(ctx context.Context, cmd *cli.Command) error {
	parent := "filmography"
	if cmd.Bool("tv") {
		parent = "tv_credits"
	}

	return runQuery(ctx, cmd, "aq", source.Credit{},
		[]string{"date", "title", "character", "vote_average"}, parent,
		func(ctx context.Context, cmd *cli.Command, svc *Services) (cache.Result[source.Person], error) {
			id, err := intArg(cmd, 0, "person id")
			if err != nil {
				return cache.Result[source.Person]{}, err
			}
			r, err := svc.TMDB.Person(ctx, id)
			if err == nil {
				p := r.Value
				fprintfHeader(cmd, "%s (%s)\n", p.Name, p.KnownForDepartment)
			}
			return r, err
		})
}

// AqCommandBuilder constructs the cli.Command definition for the "aq"
// command.
func AqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "aq",
		Usage:     "actor query",
		UsageText: `marquee aq <person-id> [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "tv",
				Usage: "list tv credits instead of films",
			},
		},
		Action: AqCommandAction,
		Meta:   meta,
	}).Build()
}
