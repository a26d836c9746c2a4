// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
)

// DefaultMaxBytes bounds how much content a single fetch may read.
const DefaultMaxBytes int64 = 256 << 20

// Fetcher retrieves an artifact by locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*Artifact, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, locator string) (*Artifact, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, locator string) (*Artifact, error) {
	return f(ctx, locator)
}

// FileFetcher reads artifacts from the local filesystem.
type FileFetcher struct {
	// MaxBytes caps the file size; zero means DefaultMaxBytes.
	MaxBytes int64

	// Digests lists extra digest algorithms to compute.
	Digests []string
}

// Fetch reads the file named by locator. A file:// prefix is accepted.
func (f *FileFetcher) Fetch(_ context.Context, locator string) (*Artifact, error) {
	path := strings.TrimPrefix(locator, "file://")
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, faults.Fetch(locator, "cannot stat file", err)
	}
	if info.IsDir() {
		return nil, faults.Fetch(locator, "path is a directory", nil)
	}
	limit := maxBytes(f.MaxBytes)
	if info.Size() > limit {
		return nil, faults.Fetch(locator, fmt.Sprintf("file exceeds %d bytes", limit), nil)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Fetch(locator, "cannot read file", err)
	}
	return New(locator, DetectContentType(path, "", content), content, f.Digests...), nil
}

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	// Client is the HTTP client to use; nil builds one with Timeout.
	Client *http.Client

	// Timeout bounds each request when Client is nil.
	Timeout time.Duration

	// MaxConcurrent caps in-flight requests; zero means unlimited.
	MaxConcurrent int

	// RatePerSecond limits request starts; zero disables rate limiting.
	RatePerSecond float64

	// Burst is the limiter burst size (minimum 1).
	Burst int

	// MaxBytes caps the response body; zero means DefaultMaxBytes.
	MaxBytes int64

	// UserAgent is sent on every request.
	UserAgent string

	// Digests lists extra digest algorithms to compute.
	Digests []string
}

// HTTPFetcher fetches artifacts over HTTP(S). It is safe for concurrent use;
// concurrency and request rate are shared across all callers.
type HTTPFetcher struct {
	client    *http.Client
	sem       chan struct{}
	limiter   *rate.Limiter
	maxBytes  int64
	userAgent string
	digests   []string
}

// NewHTTPFetcher creates an HTTP fetcher from opts.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	f := &HTTPFetcher{
		client:    client,
		maxBytes:  maxBytes(opts.MaxBytes),
		userAgent: opts.UserAgent,
		digests:   opts.Digests,
	}
	if opts.MaxConcurrent > 0 {
		f.sem = make(chan struct{}, opts.MaxConcurrent)
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return f
}

// Fetch performs a GET request for locator.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) (*Artifact, error) {
	if f.sem != nil {
		select {
		case f.sem <- struct{}{}:
			defer func() { <-f.sem }()
		case <-ctx.Done():
			return nil, faults.Fetch(locator, "waiting for fetch slot", ctx.Err())
		}
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, faults.Fetch(locator, "rate limit wait", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, faults.Fetch(locator, "invalid request", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, faults.Fetch(locator, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, faults.Fetch(locator, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, faults.Fetch(locator, "reading response body", err)
	}
	if int64(len(content)) > f.maxBytes {
		return nil, faults.Fetch(locator, fmt.Sprintf("response exceeds %d bytes", f.maxBytes), nil)
	}

	ct := DetectContentType(req.URL.Path, resp.Header.Get("Content-Type"), content)
	return New(locator, ct, content, f.digests...), nil
}

// Router dispatches a locator to the fetcher for its scheme: http and https
// go to HTTP, file:// and bare paths go to File.
type Router struct {
	File Fetcher
	HTTP Fetcher
}

// Fetch routes locator to the matching fetcher.
func (r *Router) Fetch(ctx context.Context, locator string) (*Artifact, error) {
	if locator == "" {
		return nil, faults.Fetch(locator, "empty locator", nil)
	}
	scheme := ""
	if u, err := url.Parse(locator); err == nil {
		scheme = strings.ToLower(u.Scheme)
	}
	switch scheme {
	case "http", "https":
		if r.HTTP == nil {
			return nil, faults.Fetch(locator, "no HTTP fetcher configured", nil)
		}
		return r.HTTP.Fetch(ctx, locator)
	case "", "file":
		if r.File == nil {
			return nil, faults.Fetch(locator, "no file fetcher configured", nil)
		}
		return r.File.Fetch(ctx, locator)
	default:
		// Windows drive letters parse as a one-letter scheme.
		if len(scheme) == 1 && r.File != nil {
			return r.File.Fetch(ctx, locator)
		}
		return nil, faults.Fetch(locator, fmt.Sprintf("unsupported scheme %q", scheme), nil)
	}
}

func maxBytes(n int64) int64 {
	if n <= 0 {
		return DefaultMaxBytes
	}
	return n
}
