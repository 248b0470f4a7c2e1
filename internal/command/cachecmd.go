// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/config"
	"github.com/staranto/marquee/internal/differ"
	"github.com/staranto/marquee/internal/meta"
	"github.com/staranto/marquee/internal/output"
	"github.com/staranto/marquee/internal/source"
	"github.com/staranto/marquee/internal/store"
)

// EntryRow describes one stored cache entry.
type EntryRow struct {
	Key      string    `json:"key"`
	StoredAt time.Time `json:"stored_at"`
	Age      string    `json:"age"`
	Fresh    bool      `json:"fresh"`
	Bytes    int       `json:"bytes"`
}

// rawCache reads entries of any payload type. The entry envelope is the same
// for every key, so json.RawMessage round-trips whatever a source stored.
func rawCache(cmd *cli.Command, s store.Store) *cache.Cache[json.RawMessage] {
	return cache.New[json.RawMessage](s, TTL(cmd, "cache"))
}

// CacheLsAction lists the stored keys with their age and freshness.
func CacheLsAction(ctx context.Context, cmd *cli.Command) error {
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(EntryRow{})) {
		return nil
	}
	al := BuildAttrs(cmd, "key", "age", "fresh")

	s, err := storeFor(ctx, cmd)
	if err != nil {
		return err
	}
	keys, err := store.Keys(ctx, s)
	if err != nil {
		if errors.Is(err, store.ErrNotListable) {
			return fmt.Errorf("the %s store cannot list keys", cmd.String("store"))
		}
		return err
	}

	c := rawCache(cmd, s)
	now := time.Now()
	rows := make([]EntryRow, 0, len(keys))
	for _, k := range keys {
		e, ok, err := c.Peek(ctx, k)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		rows = append(rows, EntryRow{
			Key:      k,
			StoredAt: e.StoredAt().UTC(),
			Age:      humanize.RelTime(e.StoredAt(), now, "ago", "from now"),
			Fresh:    e.Fresh(now, c.TTL()),
			Bytes:    len(e.Data),
		})
	}

	return EmitJSON(rows, al, cmd, "")
}

// CacheGetAction prints the payload stored under a key, fresh or not.
func CacheGetAction(ctx context.Context, cmd *cli.Command) error {
	key, err := textArg(cmd, 0, "key")
	if err != nil {
		return err
	}
	s, err := storeFor(ctx, cmd)
	if err != nil {
		return err
	}

	c := rawCache(cmd, s)
	e, ok, err := c.Peek(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no entry for %q", key)
	}

	state := "stale"
	if e.Fresh(time.Now(), c.TTL()) {
		state = "fresh"
	}
	fmt.Fprintf(stderr(cmd), "%s stored %s (%s)\n", key, humanize.Time(e.StoredAt()), state)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, e.Data, "", "  "); err != nil {
		return fmt.Errorf("failed to format %s: %w", key, err)
	}
	pretty.WriteByte('\n')
	_, err = stdout(cmd).Write(pretty.Bytes())
	return err
}

// CacheRmAction removes keys from the store.
func CacheRmAction(ctx context.Context, cmd *cli.Command) error {
	keys := cmd.Args().Slice()
	if len(keys) == 0 {
		return errors.New("missing key")
	}
	s, err := storeFor(ctx, cmd)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.RemoveItem(ctx, k); err != nil {
			return fmt.Errorf("failed to remove %s: %w", k, err)
		}
		log.Debugf("removed %s", k)
	}
	fmt.Fprintf(stdout(cmd), "removed %d %s\n", len(keys), plural(len(keys), "entry", "entries"))
	return nil
}

// CachePurgeAction deletes file store entries older than --hours.
func CachePurgeAction(ctx context.Context, cmd *cli.Command) error {
	s, err := storeFor(ctx, cmd)
	if err != nil {
		return err
	}
	f, ok := s.(*store.File)
	if !ok {
		return fmt.Errorf("purge only applies to the file store, not %s", cmd.String("store"))
	}

	hours := int(cmd.Int("hours"))
	n, err := f.Purge(hours)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "purged %d %s older than %dh\n", n, plural(n, "file", "files"), hours)
	return nil
}

// CacheRefreshAction refetches a box office chart regardless of its age and
// stores it. With --diff the previous payload is compared to the new one.
func CacheRefreshAction(ctx context.Context, cmd *cli.Command) error {
	arg, err := textArg(cmd, 0, "chart")
	if err != nil {
		return err
	}
	bucket, err := source.ParseBucket(arg)
	if err != nil {
		return err
	}

	svc, err := NewServices(ctx, cmd)
	if err != nil {
		return err
	}
	c := svc.BoxOffice.Cache()

	prev, had, err := c.Peek(ctx, bucket.Key())
	if err != nil {
		return err
	}

	items, err := svc.BoxOffice.Fetcher(bucket)(ctx)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, bucket.Key(), items); err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "refreshed %s (%d %s)\n", bucket, len(items), plural(len(items), "row", "rows"))

	if !cmd.Bool("diff") {
		return nil
	}
	if !had {
		fmt.Fprintf(stdout(cmd), "no previous %s entry to compare\n", bucket)
		return nil
	}

	left, err := json.Marshal(prev.Data)
	if err != nil {
		return err
	}
	right, err := json.Marshal(items)
	if err != nil {
		return err
	}
	d, err := differ.Diff(left, right, output.ColorEnabled(cmd))
	if err != nil {
		return err
	}
	if !d.Changed {
		fmt.Fprintln(stdout(cmd), "no changes")
		return nil
	}
	fmt.Fprint(stdout(cmd), d.Text)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// CacheCommandBuilder constructs the "cache" command and its maintenance
// subcommands.
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	md := map[string]any{"meta": meta}
	clean, _ := config.GetInt("cache.clean", 0)
	if clean <= 0 {
		clean = 24 //nolint:mnd
	}

	return &cli.Command{
		Name:     "cache",
		Usage:    "inspect and maintain the result cache",
		Metadata: md,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "list cached keys with age and freshness",
				UsageText: "marquee cache ls [options]",
				Metadata:  md,
				Flags:     append([]cli.Flag{schemaFlag}, NewGlobalFlags("cache")...),
				Action:    CacheLsAction,
			},
			{
				Name:      "get",
				Usage:     "print the payload stored under a key",
				UsageText: "marquee cache get <key>",
				Metadata:  md,
				Flags:     NewCacheFlags("cache"),
				Action:    CacheGetAction,
			},
			{
				Name:      "rm",
				Usage:     "remove keys from the cache",
				UsageText: "marquee cache rm <key>...",
				Metadata:  md,
				Flags:     NewCacheFlags("cache"),
				Action:    CacheRmAction,
			},
			{
				Name:      "purge",
				Usage:     "delete file cache entries older than --hours",
				UsageText: "marquee cache purge [--hours N]",
				Metadata:  md,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "hours",
						Usage: "age in hours past which entries are deleted",
						Value: clean,
					},
				}, NewCacheFlags("cache")...),
				Action: CachePurgeAction,
			},
			{
				Name:      "refresh",
				Usage:     "refetch a box office chart now",
				UsageText: "marquee cache refresh <worldwide|domestic|daily|weekend> [--diff]",
				Metadata:  md,
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "diff",
						Usage: "show what changed since the stored entry",
					},
					&cli.BoolWithInverseFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "colored diff (default: when stdout is a terminal)",
					},
				}, NewCacheFlags("cache")...),
				Action: CacheRefreshAction,
			},
		},
	}
}
