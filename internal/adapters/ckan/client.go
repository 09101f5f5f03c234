// Package ckan fetches hotspot datasets from a CKAN open-data portal.
package ckan

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"culture_hotspots/internal/adapters/observability"
	"culture_hotspots/internal/domain"
)

const maxAttempts = 4

var (
	ErrNotFound     = errors.New("ckan: not found")
	ErrUnauthorized = errors.New("ckan: unauthorized")
	ErrForbidden    = errors.New("ckan: forbidden")
	ErrRejected     = errors.New("ckan: action not successful")
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

// New builds a client for the portal at base (e.g. https://ckan0.cf.opendata.inter.prod-toronto.ca).
// key is optional; public resources need none.
func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("CKAN base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 60 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Resource is the subset of a CKAN resource record we use.
type Resource struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Format          string `json:"format"`
	URL             string `json:"url"`
	DatastoreActive bool   `json:"datastore_active"`
}

type actionResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"__type"`
	} `json:"error"`
}

// ResourceShow resolves resource metadata via the action API.
func (c *Client) ResourceShow(ctx context.Context, id string) (Resource, error) {
	u := c.base + "/api/3/action/resource_show?id=" + url.QueryEscape(id)
	var r Resource
	if err := c.action(ctx, u, "resource_show", &r); err != nil {
		return Resource{}, err
	}
	return r, nil
}

// action calls a CKAN action endpoint and decodes its result into out.
func (c *Client) action(ctx context.Context, u, endpoint string, out any) error {
	resp, err := c.get(ctx, u, endpoint, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var ar actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if !ar.Success {
		msg := "unknown error"
		if ar.Error != nil {
			msg = ar.Error.Message
		}
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if err := json.Unmarshal(ar.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", endpoint, err)
	}
	return nil
}

// PackageShow lists the resources of a dataset package.
func (c *Client) PackageShow(ctx context.Context, id string) ([]Resource, error) {
	u := c.base + "/api/3/action/package_show?id=" + url.QueryEscape(id)
	var pkg struct {
		Resources []Resource `json:"resources"`
	}
	if err := c.action(ctx, u, "package_show", &pkg); err != nil {
		return nil, err
	}
	return pkg.Resources, nil
}

// CSVResource picks the package's CSV resource, preferring one backed by
// the datastore.
func CSVResource(rs []Resource) (Resource, bool) {
	var found *Resource
	for i := range rs {
		if !strings.EqualFold(rs[i].Format, "csv") {
			continue
		}
		if rs[i].DatastoreActive {
			return rs[i], true
		}
		if found == nil {
			found = &rs[i]
		}
	}
	if found == nil {
		return Resource{}, false
	}
	return *found, true
}

// DownloadURL picks the datastore dump when the resource has one, otherwise
// the resource's own file URL.
func (c *Client) DownloadURL(r Resource) (string, error) {
	if r.DatastoreActive {
		return c.base + "/datastore/dump/" + url.PathEscape(r.ID), nil
	}
	if r.URL == "" {
		return "", fmt.Errorf("ckan resource %s has no download url", r.ID)
	}
	return r.URL, nil
}

// Download streams the body at u. The caller closes it.
func (c *Client) Download(ctx context.Context, u string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, u, "download", "text/csv")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Source adapts resource id into a domain.RowSource.
func (c *Client) Source(id string) domain.RowSource {
	return resourceSource{c: c, id: id}
}

// PackageSource resolves the package's CSV resource at open time.
func (c *Client) PackageSource(packageID string) domain.RowSource {
	return resourceSource{c: c, pkg: packageID}
}

type resourceSource struct {
	c   *Client
	id  string
	pkg string
}

func (s resourceSource) Name() string {
	if s.pkg != "" {
		return "ckan:package:" + s.pkg
	}
	return "ckan:" + s.id
}

func (s resourceSource) Open(ctx context.Context) (io.ReadCloser, error) {
	r, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.c.DownloadURL(r)
	if err != nil {
		return nil, err
	}
	return s.c.Download(ctx, u)
}

func (s resourceSource) resolve(ctx context.Context) (Resource, error) {
	if s.pkg == "" {
		return s.c.ResourceShow(ctx, s.id)
	}
	rs, err := s.c.PackageShow(ctx, s.pkg)
	if err != nil {
		return Resource{}, err
	}
	r, ok := CSVResource(rs)
	if !ok {
		return Resource{}, fmt.Errorf("ckan package %s has no CSV resource", s.pkg)
	}
	return r, nil
}

// get performs a rate limited GET, retrying 429 and transient 5xx with
// Retry-After or jittered exponential backoff. On success the caller owns
// resp.Body.
func (c *Client) get(ctx context.Context, u, endpoint, accept string) (*http.Response, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if c.key != "" {
			req.Header.Set("Authorization", c.key)
		}
		req.Header.Set("Accept", accept)
		req.Header.Set("User-Agent", "culture-hotspots/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("ckan", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("ckan", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, nil

		case http.StatusNotFound:
			drain(resp)
			return nil, ErrNotFound

		case http.StatusUnauthorized:
			drain(resp)
			return nil, ErrUnauthorized

		case http.StatusForbidden:
			drain(resp)
			return nil, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			drain(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("ckan %s: remote %d", endpoint, resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("ckan %s: bad status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date); 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff is 200ms doubling per attempt plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
