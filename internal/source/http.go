// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/apex/log"
	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrOffline is returned by every request made while the Getter is offline.
// A cache in front of the Getter then falls back to whatever it has stored.
var ErrOffline = errors.New("offline: network access disabled")

// HTTPError is a non-2xx response. URL has any credentials redacted.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// GetterOptions configures NewGetter.
type GetterOptions struct {
	Retries int
	Timeout time.Duration
	Offline bool
	Logger  log.Interface
}

// Getter issues JSON GETs with retries.
type Getter struct {
	client  *retryablehttp.Client
	offline bool
	logger  log.Interface
}

// NewGetter returns a Getter. Retries are on connection errors and 5xx/429;
// the final response is handed back as-is so callers see the real status.
func NewGetter(o GetterOptions) *Getter {
	if o.Logger == nil {
		o.Logger = log.Log
	}

	hc := cleanhttp.DefaultPooledClient()
	if o.Timeout > 0 {
		hc.Timeout = o.Timeout
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.RetryMax = o.Retries
	rc.RetryWaitMin = 250 * time.Millisecond //nolint:mnd
	rc.RetryWaitMax = 2 * time.Second        //nolint:mnd
	rc.Logger = leveled{o.Logger}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Getter{client: rc, offline: o.Offline, logger: o.Logger}
}

// Offline reports whether network access is disabled.
func (g *Getter) Offline() bool { return g.offline }

// GetJSON GETs base with params encoded as a query string and decodes the
// body into out. Each param is nil or a struct carrying `url` tags.
func (g *Getter) GetJSON(ctx context.Context, base string, header http.Header, out any, params ...any) error {
	u, err := BuildURL(base, params...)
	if err != nil {
		return err
	}
	if g.offline {
		return ErrOffline
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	g.logger.Debugf("GET %s", Redact(u))
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", scrub(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &HTTPError{URL: Redact(u), StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", Redact(u), err)
	}
	return nil
}

// BuildURL appends the query-encoded params to base.
func BuildURL(base string, params ...any) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", base, err)
	}

	q := u.Query()
	for _, p := range params {
		if p == nil {
			continue
		}
		v, err := query.Values(p)
		if err != nil {
			return "", fmt.Errorf("failed to encode query: %w", err)
		}
		for k, vs := range v {
			for _, s := range vs {
				q.Add(k, s)
			}
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Key renders path and params into a stable cache key. Credentials must not
// be passed in params.
func Key(prefix, path string, params any) string {
	k := prefix + ":" + path
	if params == nil {
		return k
	}
	v, err := query.Values(params)
	if err != nil || len(v) == 0 {
		return k
	}
	return k + "?" + v.Encode()
}

var secretParam = regexp.MustCompile(`(?i)((?:api_?key|apikey)=)[^&\s"]*`)

// Redact masks API keys carried in a URL query string.
func Redact(s string) string {
	return secretParam.ReplaceAllString(s, "${1}REDACTED")
}

// scrub rewrites *url.Error so transport errors never print a key.
func scrub(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: Redact(ue.URL), Err: ue.Err}
	}
	return err
}

// leveled adapts an apex logger to retryablehttp.LeveledLogger.
type leveled struct {
	l log.Interface
}

func (a leveled) fields(kv []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		switch v := kv[i+1].(type) {
		case *url.URL:
			f[k] = Redact(v.String())
		case string:
			f[k] = Redact(v)
		default:
			f[k] = v
		}
	}
	return f
}

func (a leveled) Error(msg string, kv ...interface{}) { a.l.WithFields(a.fields(kv)).Error(msg) }
func (a leveled) Info(msg string, kv ...interface{})  { a.l.WithFields(a.fields(kv)).Debug(msg) }
func (a leveled) Debug(msg string, kv ...interface{}) { a.l.WithFields(a.fields(kv)).Debug(msg) }
func (a leveled) Warn(msg string, kv ...interface{})  { a.l.WithFields(a.fields(kv)).Warn(msg) }
