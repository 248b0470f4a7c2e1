// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/staranto/marquee/internal/meta"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for marquee
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_marquee()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "aq bq cache mq nq oq tvq completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --no-color --filter -f --local --output -o --sort -s --titles -t --tldr --store --ttl --offline"
    local words=""

    case "$cmd" in
        aq)
            local opts="$common --schema --tv"
            ;;
        bq)
            local opts="$common --schema --date -d"
            words="all worldwide domestic daily weekend"
            ;;
        cache)
            local opts="--store --ttl --offline --diff --hours --color --no-color"
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                words="ls get rm purge refresh"
            elif [[ ${COMP_WORDS[2]} == "refresh" ]]; then
                words="worldwide domestic daily weekend"
            fi
            ;;
        mq)
            local opts="$common --schema --page -p"
            words="popular upcoming top-rated now-playing search multi details similar financials"
            ;;
        nq)
            local opts="$common --schema --limit -l"
            words="film tv celebrity entertainment"
            ;;
        oq)
            local opts="$common --schema --page -p"
            words="search details"
            ;;
        tvq)
            local opts="$common --schema"
            words="popular details season episode"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --store)
            COMPREPLY=( $(compgen -W "file memory redis s3" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* || -z "$words" ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$words" -- "$cur") )
    return 0
}

complete -F _marquee marquee
`

const zshCompletionScript = `#compdef marquee

_marquee() {
  local -a cmds
  cmds=(
    'aq:actor query'
    'bq:box office query'
    'cache:inspect and maintain the result cache'
    'mq:movie query'
    'nq:entertainment news query'
    'oq:OMDb query'
    'tvq:tv query'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color --no-color)'{-c,--color}'[enable colored text]'
  '--no-color[disable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '--local[show timestamps in local time]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  '--store[cache store]:store:(file memory redis s3)'
  '--ttl[cache ttl in hours]:hours'
  '--offline[serve cached data only]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'marquee commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    aq)
      _arguments -C $common '--schema[dump schema]' '--tv[tv credits]' '1:person id'
      ;;
    bq)
      _arguments -C $common '--schema[dump schema]' \
        '(-d --date)'{-d,--date}'[daily chart date]:date' \
        '1:chart:(all worldwide domestic daily weekend)'
      ;;
    cache)
      _arguments -C \
        '--store[cache store]:store:(file memory redis s3)' \
        '--ttl[cache ttl in hours]:hours' \
        '--diff[show changes on refresh]' \
        '--hours[purge age in hours]:hours' \
        '1:action:(ls get rm purge refresh)' \
        '*:key'
      ;;
    mq)
      _arguments -C $common '--schema[dump schema]' '(-p --page)'{-p,--page}'[page]:page' \
        '1:verb:(popular upcoming top-rated now-playing search multi details similar financials)' \
        '*:query'
      ;;
    nq)
      _arguments -C $common '--schema[dump schema]' '(-l --limit)'{-l,--limit}'[articles]:limit' \
        '1:category:(film tv celebrity entertainment)'
      ;;
    oq)
      _arguments -C $common '--schema[dump schema]' '(-p --page)'{-p,--page}'[page]:page' \
        '1:verb:(search details)' '*:query'
      ;;
    tvq)
      _arguments -C $common '--schema[dump schema]' \
        '1:verb:(popular details season episode)' '*:id'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _marquee marquee
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(stdout(cmd), bashCompletionScript)
	case "zsh":
		fmt.Fprint(stdout(cmd), zshCompletionScript)
	default:
		return errors.New("usage: marquee completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "marquee completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
