// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/marquee/internal/aws"
	"github.com/staranto/marquee/internal/cacheutil"
)

// Kinds accepted by Open.
const (
	KindFile   = "file"
	KindMemory = "memory"
	KindRedis  = "redis"
	KindS3     = "s3"
)

// Kinds lists every store kind Open understands.
var Kinds = []string{KindFile, KindMemory, KindRedis, KindS3}

// S3Options configures the S3 store.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Profile   string
	Endpoint  string
	PathStyle bool
	// Retries is how many times a failed S3 call is retried.
	Retries int
}

// Options selects and configures a Store.
type Options struct {
	Kind  string
	Dir   string
	Redis RedisOptions
	S3    S3Options
}

// Open builds the Store named by o.Kind. An empty kind means file.
func Open(ctx context.Context, o Options) (Store, error) {
	switch strings.ToLower(o.Kind) {
	case "", KindFile:
		// MARQUEE_CACHE=0 keeps results for the life of the process only.
		if !cacheutil.Enabled() {
			log.Debug("file cache disabled, using memory store")
			return NewMemory(), nil
		}
		return NewFile(o.Dir)
	case KindMemory:
		return NewMemory(), nil
	case KindRedis:
		if o.Redis.Addr == "" {
			return nil, errors.New("redis store requires cache.redis.addr")
		}
		return NewRedis(o.Redis), nil
	case KindS3:
		if o.S3.Bucket == "" {
			return nil, errors.New("s3 store requires cache.s3.bucket")
		}
		cfg, err := aws.LoadAWSConfig(ctx,
			aws.WithProfile(o.S3.Profile),
			aws.WithRegion(o.S3.Region),
			aws.WithMaxAttempts(o.S3.Retries+1))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := aws.NewS3(cfg, aws.WithS3Endpoint(o.S3.Endpoint, o.S3.PathStyle))
		return NewS3(client, o.S3.Bucket, o.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store %q (want one of %s)", o.Kind, strings.Join(Kinds, ", "))
	}
}
