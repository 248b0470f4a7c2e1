// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/config"
	"github.com/staranto/marquee/internal/source"
	"github.com/staranto/marquee/internal/store"
)

// Services are the cache-backed clients a command works with. They all share
// one store.
type Services struct {
	Store     store.Store
	Getter    *source.Getter
	BoxOffice *source.BoxOffice
	TMDB      *source.TMDB
	OMDb      *source.OMDb
	News      *source.News
}

// NewServices opens the store selected by --store and builds every source
// client on top of it.
func NewServices(ctx context.Context, cmd *cli.Command) (*Services, error) {
	s, err := store.Open(ctx, StoreOptions(cmd.String("store")))
	if err != nil {
		return nil, err
	}
	log.Debugf("store: %T", s)

	if f, ok := s.(*store.File); ok {
		if hours, _ := config.GetInt("cache.clean", 0); hours > 0 {
			if n, err := f.Purge(hours); err != nil {
				log.WithError(err).Warn("cache purge failed")
			} else if n > 0 {
				log.Debugf("purged %d cache entries older than %dh", n, hours)
			}
		}
	}

	retries, _ := config.GetInt("http.retries", 2)          //nolint:mnd
	timeout, _ := config.GetInt("http.timeout_seconds", 15) //nolint:mnd
	getter := source.NewGetter(source.GetterOptions{
		Retries: retries,
		Timeout: time.Duration(timeout) * time.Second,
		Offline: cmd.Bool("offline"),
	})

	var opts []cache.Option
	if coalesce, _ := config.GetBool("cache.coalesce", false); coalesce {
		opts = append(opts, cache.WithCoalescing())
	}

	language, _ := config.GetString("tmdb.language", "")

	return &Services{
		Store:  s,
		Getter: getter,
		BoxOffice: source.NewBoxOffice(getter, BaseURL("boxoffice"),
			cache.New[[]source.Item](s, TTL(cmd, "boxoffice"), opts...)),
		TMDB: source.NewTMDB(getter, source.TMDBOptions{
			BaseURL:  BaseURL("tmdb"),
			APIKey:   APIKey("tmdb"),
			Language: language,
		}, s, TTL(cmd, "tmdb"), opts...),
		OMDb: source.NewOMDb(getter, BaseURL("omdb"), APIKey("omdb"), s, TTL(cmd, "omdb"), opts...),
		News: source.NewNews(getter, BaseURL("news"), APIKey("news"), s, TTL(cmd, "news"), opts...),
	}, nil
}

// StoreOptions reads the store settings for kind from the config file.
func StoreOptions(kind string) store.Options {
	o := store.Options{Kind: kind}
	o.Dir, _ = config.GetString("cache.dir", "")

	o.Redis.Addr, _ = config.GetString("cache.redis.addr", os.Getenv("MARQUEE_REDIS_ADDR"))
	o.Redis.Password, _ = config.GetString("cache.redis.password", os.Getenv("MARQUEE_REDIS_PASSWORD"))
	o.Redis.DB, _ = config.GetInt("cache.redis.db", 0)
	o.Redis.Prefix, _ = config.GetString("cache.redis.prefix", "")
	retention, _ := config.GetInt("cache.redis.retention_hours", 0)
	o.Redis.Retention = time.Duration(retention) * time.Hour

	o.S3.Bucket, _ = config.GetString("cache.s3.bucket", os.Getenv("MARQUEE_S3_BUCKET"))
	o.S3.Prefix, _ = config.GetString("cache.s3.prefix", "")
	o.S3.Region, _ = config.GetString("cache.s3.region", "")
	o.S3.Profile, _ = config.GetString("cache.s3.profile", "")
	o.S3.Endpoint, _ = config.GetString("cache.s3.endpoint", "")
	o.S3.PathStyle, _ = config.GetBool("cache.s3.path_style", false)
	o.S3.Retries, _ = config.GetInt("http.retries", 2) //nolint:mnd

	return o
}

// TTL is the freshness window for name. An explicit --ttl or MARQUEE_TTL
// wins, then <name>.ttl_hours, then cache.ttl_hours, then the --ttl default.
// Config keys are looked up in the command namespace first.
func TTL(cmd *cli.Command, name string) time.Duration {
	if !cmd.IsSet("ttl") {
		for _, key := range []string{name + ".ttl_hours", "cache.ttl_hours"} {
			if h, err := config.GetInt(key); err == nil {
				log.Debugf("ttl for %s from %s: %dh", name, key, h)
				return time.Duration(h) * time.Hour
			}
		}
	}
	return time.Duration(cmd.Int("ttl")) * time.Hour
}

// BaseURL returns the upstream root for name from MARQUEE_<NAME>_URL or
// <name>.base_url. Empty means the client default.
func BaseURL(name string) string {
	if u := os.Getenv("MARQUEE_" + strings.ToUpper(name) + "_URL"); u != "" {
		return u
	}
	u, _ := config.GetString(name + ".base_url")
	return u
}

// APIKey returns the key for name from MARQUEE_<NAME>_API_KEY or
// <name>.api_key.
func APIKey(name string) string {
	if k := os.Getenv("MARQUEE_" + strings.ToUpper(name) + "_API_KEY"); k != "" {
		return k
	}
	k, _ := config.GetString(name + ".api_key")
	return k
}

// storeFor opens the store alone, for the cache maintenance commands.
func storeFor(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	s, err := store.Open(ctx, StoreOptions(cmd.String("store")))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cmd.String("store"), err)
	}
	return s, nil
}
