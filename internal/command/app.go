// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"strings"

	"github.com/staranto/marquee/internal/config"
	"github.com/staranto/marquee/internal/meta"
	"github.com/urfave/cli/v3"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// The arg[1] immediately following the binary (arg[0]) is the marquee
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load(ns)
	meta := meta.Meta{
		Args:      args,
		Config:    cfg,
		Context:   ctx,
		Namespace: ns,
	}

	app := &cli.Command{
		Name:  "marquee",
		Usage: "Movie, TV and box office queries with a local result cache",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "marquee version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		AqCommandBuilder(app, meta),
		BqCommandBuilder(app, meta),
		CacheCommandBuilder(app, meta),
		MqCommandBuilder(app, meta),
		NqCommandBuilder(app, meta),
		OqCommandBuilder(app, meta),
		TvqCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func(cmds []*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app, nil
}
