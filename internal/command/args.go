// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/cache"
)

// intArg reads positional argument i as a number.
func intArg(cmd *cli.Command, i int, name string) (int, error) {
	s := cmd.Args().Get(i)
	if s == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", name, s)
	}
	return n, nil
}

// textArg joins the positional arguments from i on, so unquoted multi-word
// queries work.
func textArg(cmd *cli.Command, i int, name string) (string, error) {
	args := cmd.Args().Slice()
	if len(args) <= i {
		return "", fmt.Errorf("missing %s", name)
	}
	s := strings.TrimSpace(strings.Join(args[i:], " "))
	if s == "" {
		return "", fmt.Errorf("missing %s", name)
	}
	return s, nil
}

// runQuery builds and runs a QueryActionRunner for one verb of a command.
func runQuery[T any](
	ctx context.Context,
	cmd *cli.Command,
	name string,
	schema any,
	defaults []string,
	parent string,
	fetch func(context.Context, *cli.Command, *Services) (cache.Result[T], error),
) error {
	runner := &QueryActionRunner[T]{
		CommandName:  name,
		SchemaType:   reflect.TypeOf(schema),
		DefaultAttrs: defaults,
		Parent:       parent,
		FetchFn:      fetch,
	}
	return runner.Run(ctx, cmd)
}

// verb returns the first positional argument, lower cased, or def.
func verb(cmd *cli.Command, def string) string {
	if v := strings.ToLower(cmd.Args().First()); v != "" {
		return v
	}
	return def
}
