// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/config"
	"github.com/staranto/marquee/internal/store"
)

func init() {
	cfg, _ = config.Load("")
}

var (
	cfg config.Type

	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the attributes available to --attrs",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		HideDefault: true,
	}
)

func newPageFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "page",
		Aliases: []string{"p"},
		Usage:   "result page to fetch",
		Value:   1,
	}
}

// NewGlobalFlags returns the output and cache flags shared by every query
// command. params[0] is the command name and selects the config namespace.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns := params[0]

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "colored text output (default: when stdout is a terminal)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
		},
		NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, &cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		}),
		&cli.BoolFlag{
			Name:  "local",
			Usage: "show timestamps in local time (MARQUEE_TZ or TZ)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, raw, yaml)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, OutputValidator)
			},
		},
		NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, &cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		}),
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}

	return append(flags, NewCacheFlags(ns)...)
}

// NewCacheFlags returns the flags selecting the cache store and TTL.
func NewCacheFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "store",
			Usage: "cache store (file, memory, redis, s3)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("MARQUEE_STORE"),
				yaml.YAML(ns+"."+"store", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("cache.store", altsrc.StringSourcer(cfg.Source)),
			),
			Value: store.KindFile,
			Validator: func(value string) error {
				return FlagValidators(value, StoreValidator)
			},
		},
		&cli.IntFlag{
			Name:  "ttl",
			Usage: "hours a cached result stays fresh",
			// Config file TTLs are per source and resolved by TTL.
			Sources: cli.EnvVars("MARQUEE_TTL"),
			Value:   6, //nolint:mnd
			Validator: func(value int) error {
				return FlagValidators(value, NonNegativeValidator)
			},
		},
		&cli.BoolFlag{
			Name:  "offline",
			Usage: "never call upstream; serve whatever the cache holds",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("MARQUEE_OFFLINE"),
			),
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
