// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/attrs"
	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/meta"
	"github.com/staranto/marquee/internal/output"
)

var lookPath = exec.LookPath

// ShortCircuitTLDR checks the --tldr flag and, if present, runs
// `tldr marquee-<subcmd>` and returns true so the caller can exit early.
// Without a tldr client the built in quick examples are printed instead.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if !cmd.Bool("tldr") {
		return false
	}
	if _, err := lookPath("tldr"); err != nil {
		output.DumpExamples(stdout(cmd), quickExamples[subcmd])
		return true
	}
	c := exec.CommandContext(ctx, "tldr", "marquee-"+subcmd)
	c.Stdout = stdout(cmd)
	c.Stderr = stderr(cmd)
	_ = c.Run()
	return true
}

// DumpSchemaIfRequested prints the attribute paths of t when --schema is
// set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") && t != nil {
		output.DumpSchema(stdout(cmd), t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// EmitJSON marshals results and passes them to the common output routine.
// parent is the gjson path of the rows inside results, if any.
func EmitJSON(results any, al attrs.AttrList, cmd *cli.Command, parent string) error {
	var raw bytes.Buffer
	if err := json.NewEncoder(&raw).Encode(results); err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return output.SliceDiceSpit(raw, al, cmd, parent, stdout(cmd))
}

// WarnIfStale writes a notice to stderr when r was served from an expired
// entry.
func WarnIfStale[T any](cmd *cli.Command, what string, r cache.Result[T]) {
	if r.Stale() {
		output.StaleNotice(stderr(cmd), what, r.StoredAt, time.Now(), r.FetchErr)
	}
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// QueryCommandBuilder constructs a cli.Command for the query subcommands
// using a consistent pattern: metadata, tldr/schema flags, global flags and
// the global validator are wired automatically.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			tldrFlag,
			schemaFlag,
		}, NewGlobalFlags(qcb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action: short-circuit
// checks, attrs, the cached fetch, the stale notice and output emission.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	// Parent is the gjson path of the rows inside T, if T is not itself the
	// row or row list.
	Parent  string
	FetchFn func(context.Context, *cli.Command, *Services) (cache.Result[T], error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	svc, err := NewServices(ctx, cmd)
	if err != nil {
		return err
	}

	result, err := qar.FetchFn(ctx, cmd, svc)
	if err != nil {
		return err
	}
	log.Debugf("%s served from %s", qar.CommandName, result.Origin)
	WarnIfStale(cmd, qar.CommandName+" result", result)

	return EmitJSON(result.Value, attrs, cmd, qar.Parent)
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// fprintfHeader writes a heading above text output. Other formats stay
// machine readable.
func fprintfHeader(cmd *cli.Command, format string, a ...any) {
	if cmd.String("output") == "text" {
		fmt.Fprintf(stdout(cmd), format, a...)
	}
}
