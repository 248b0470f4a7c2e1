// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/config"
)

// DefaultArgSet is expanded when no @set is named on the command line.
const DefaultArgSet = "defaults"

// ExpandArgSets splices a named argument set from the config file into args.
// A set is a list of argument strings stored under "<command>.<set>", for
// example
//
//	bq:
//	  defaults: ["--sort -gross"]
//	  wide: ["--attrs rank,title,gross::$,weeks"]
//
// and is selected with "@wide". Without an @set, "defaults" is used if it
// exists. The set's arguments are inserted right after the (sub)command names
// so that explicit arguments still override them.
func ExpandArgSets(app *cli.Command, args []string) ([]string, error) {
	if len(args) < 2 { //nolint:mnd
		return args, nil
	}
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return args, nil
		}
	}

	// Walk down the command tree so sets can be keyed per subcommand, such as
	// "cache.ls.defaults".
	path := []string{}
	idx := 1
	cmd := app
	for idx < len(args) {
		sub := cmd.Command(args[idx])
		if sub == nil {
			break
		}
		path = append(path, sub.Name)
		cmd = sub
		idx++
	}
	if len(path) == 0 {
		return args, nil
	}

	out := make([]string, 0, len(args))
	out = append(out, args[:idx]...)

	set := ""
	rest := make([]string, 0, len(args)-idx)
	for _, a := range args[idx:] {
		if set == "" && strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			continue
		}
		rest = append(rest, a)
	}

	named := set != ""
	if !named {
		set = DefaultArgSet
	}

	key := strings.Join(path, ".") + "." + set
	setArgs, err := config.GetStringSlice(key)
	if err != nil || len(setArgs) == 0 {
		if named {
			return nil, fmt.Errorf("argument set @%s is not defined (%s)", set, key)
		}
		return args, nil
	}

	for _, a := range setArgs {
		out = append(out, strings.Fields(a)...)
	}
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", key, out)
	return out, nil
}
